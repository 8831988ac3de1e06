package main

// General API documentation for swaggo. Run `swag init -g cmd/modelmgrd/docs.go`
// to generate docs, then build with -tags=swagger to serve them.
//
// @title           modelmgrd API
// @version         1.0
// @description     HTTP API for managing local ML model artifacts: download, load, unload, switch.
//
// @BasePath  /
//
// @schemes http
