package types

// ModelListResponse wraps the model mapping returned by GET /models/list
// and GET /models/loaded.
type ModelListResponse struct {
	// Registered models keyed by model id.
	Models map[string]ModelInfo `json:"models"`
}

// DownloadResponse is returned by POST /models/download.
type DownloadResponse struct {
	// Opaque id for polling GET /models/download/{id}/status.
	// example: 9f1c2d64-6a0f-4f6e-9a1c-1b2d3e4f5a6b
	DownloadID string `json:"download_id" example:"9f1c2d64-6a0f-4f6e-9a1c-1b2d3e4f5a6b"`
	// Human-readable confirmation.
	// example: started downloading model mistral-7b-q4
	Message string `json:"message" example:"started downloading model mistral-7b-q4"`
}

// StatusResponse is the generic success payload for lifecycle operations
// (load, unload, switch, delete).
type StatusResponse struct {
	// example: success
	Status string `json:"status" example:"success"`
	// example: model mistral-7b-q4 loaded successfully
	Message string `json:"message,omitempty" example:"model mistral-7b-q4 loaded successfully"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not found: mistral-7b-q4
	Error string `json:"error" example:"model not found: mistral-7b-q4"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
