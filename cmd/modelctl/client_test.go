package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"modelmgrd/pkg/types"
)

func TestClientDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/list" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"models":{"m1":{"model_id":"m1","model_type":"llm"}}}`))
	}))
	defer srv.Close()

	var out types.ModelListResponse
	if err := newClient(srv.URL).do("GET", "/models/list", nil, &out); err != nil {
		t.Fatalf("do: %v", err)
	}
	if _, ok := out.Models["m1"]; !ok {
		t.Fatalf("m1 missing: %+v", out)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model not found: ghost","code":404}`))
	}))
	defer srv.Close()

	err := newClient(srv.URL).do("POST", "/models/load/ghost", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "model not found: ghost") {
		t.Fatalf("expected API error message, got %v", err)
	}
}

func TestClientAddsScheme(t *testing.T) {
	c := newClient("127.0.0.1:8080")
	if c.addr != "http://127.0.0.1:8080" {
		t.Fatalf("scheme not added: %q", c.addr)
	}
}
