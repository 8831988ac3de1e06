package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"modelmgrd/internal/manager"
	"modelmgrd/pkg/types"
)

var errInstantiate = errors.New("no model files found")

// stubService records calls and returns scripted results.
type stubService struct {
	models     map[string]types.ModelInfo
	loaded     map[string]types.ModelInfo
	downloadID string
	task       types.DownloadTask
	taskKnown  bool

	downloadErr error
	loadErr     error
	unloadErr   error
	switchErr   error
	deleteErr   error

	gotConfig types.ModelConfig
	gotID     string
	gotType   types.ModelType
}

func (s *stubService) ListAvailable() map[string]types.ModelInfo { return s.models }
func (s *stubService) ListLoaded() map[string]types.ModelInfo    { return s.loaded }

func (s *stubService) Download(cfg types.ModelConfig) (string, error) {
	s.gotConfig = cfg
	return s.downloadID, s.downloadErr
}

func (s *stubService) DownloadStatus(id string) (types.DownloadTask, bool) {
	s.gotID = id
	return s.task, s.taskKnown
}

func (s *stubService) Load(id string) error   { s.gotID = id; return s.loadErr }
func (s *stubService) Unload(id string) error { s.gotID = id; return s.unloadErr }

func (s *stubService) SwitchActive(id string, modelType types.ModelType) error {
	s.gotID, s.gotType = id, modelType
	return s.switchErr
}

func (s *stubService) Delete(id string) error { s.gotID = id; return s.deleteErr }

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var e types.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error payload: %v (%s)", err, rec.Body.String())
	}
	return e
}

func TestListModels(t *testing.T) {
	svc := &stubService{models: map[string]types.ModelInfo{
		"m1": {ModelID: "m1", ModelType: types.ModelTypeLLM},
	}}
	rec := doRequest(t, NewMux(svc), "GET", "/models/list", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var out types.ModelListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := out.Models["m1"]; !ok {
		t.Fatalf("m1 missing from response: %s", rec.Body.String())
	}
}

func TestListLoadedModels(t *testing.T) {
	svc := &stubService{loaded: map[string]types.ModelInfo{"m2": {ModelID: "m2", IsLoaded: true}}}
	rec := doRequest(t, NewMux(svc), "GET", "/models/loaded", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var out types.ModelListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Models) != 1 {
		t.Fatalf("expected 1 loaded model, got %d", len(out.Models))
	}
}

func TestDownloadModel(t *testing.T) {
	svc := &stubService{downloadID: "task-1"}
	body := `{"model_id":"m1","model_type":"llm","repo_id":"org/repo","capabilities":["chat"]}`
	rec := doRequest(t, NewMux(svc), "POST", "/models/download", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var out types.DownloadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.DownloadID != "task-1" {
		t.Fatalf("unexpected download id %q", out.DownloadID)
	}
	if svc.gotConfig.ModelID != "m1" || svc.gotConfig.RepoID != "org/repo" {
		t.Fatalf("config not passed through: %+v", svc.gotConfig)
	}
}

func TestDownloadModelInvalidConfig(t *testing.T) {
	svc := &stubService{downloadErr: manager.ErrInvalidConfig("model_id is required")}
	rec := doRequest(t, NewMux(svc), "POST", "/models/download", `{"repo_id":"org/repo"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != http.StatusBadRequest {
		t.Fatalf("error payload code %d", e.Code)
	}
}

func TestDownloadModelRequiresJSONContentType(t *testing.T) {
	svc := &stubService{downloadID: "task-1"}
	req := httptest.NewRequest("POST", "/models/download", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

func TestDownloadModelBadJSON(t *testing.T) {
	svc := &stubService{downloadID: "task-1"}
	rec := doRequest(t, NewMux(svc), "POST", "/models/download", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDownloadStatus(t *testing.T) {
	svc := &stubService{
		taskKnown: true,
		task: types.DownloadTask{
			Status:    types.DownloadCompleted,
			Progress:  1.0,
			LocalPath: "/data/models/m1",
		},
	}
	rec := doRequest(t, NewMux(svc), "GET", "/models/download/task-1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if svc.gotID != "task-1" {
		t.Fatalf("task id not passed through: %q", svc.gotID)
	}
	var out types.DownloadTask
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != types.DownloadCompleted || out.LocalPath == "" {
		t.Fatalf("unexpected task %+v", out)
	}
}

func TestDownloadStatusUnknown(t *testing.T) {
	rec := doRequest(t, NewMux(&stubService{}), "GET", "/models/download/nope/status", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLoadModel(t *testing.T) {
	svc := &stubService{}
	rec := doRequest(t, NewMux(svc), "POST", "/models/load/m1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotID != "m1" {
		t.Fatalf("model id not passed through")
	}
	var out types.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != "success" {
		t.Fatalf("unexpected status %q", out.Status)
	}
}

func TestLoadModelNotFound(t *testing.T) {
	svc := &stubService{loadErr: manager.ErrModelNotFound("ghost")}
	rec := doRequest(t, NewMux(svc), "POST", "/models/load/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLoadModelFailure(t *testing.T) {
	svc := &stubService{loadErr: manager.ErrLoadFailed("m1", errInstantiate)}
	rec := doRequest(t, NewMux(svc), "POST", "/models/load/m1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUnloadModelNotLoaded(t *testing.T) {
	svc := &stubService{unloadErr: manager.ErrNotLoaded("m1")}
	rec := doRequest(t, NewMux(svc), "POST", "/models/unload/m1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSwitchModelDefaultsToLLM(t *testing.T) {
	svc := &stubService{}
	rec := doRequest(t, NewMux(svc), "POST", "/models/switch/m1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotType != types.ModelTypeLLM {
		t.Fatalf("expected llm default, got %q", svc.gotType)
	}
}

func TestSwitchModelWithType(t *testing.T) {
	svc := &stubService{}
	rec := doRequest(t, NewMux(svc), "POST", "/models/switch/m1?model_type=embedding", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if svc.gotType != types.ModelTypeEmbedding {
		t.Fatalf("model type not passed through: %q", svc.gotType)
	}
}

func TestDeleteModelNotFound(t *testing.T) {
	svc := &stubService{deleteErr: manager.ErrModelNotFound("ghost")}
	rec := doRequest(t, NewMux(svc), "DELETE", "/models/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteModel(t *testing.T) {
	svc := &stubService{}
	rec := doRequest(t, NewMux(svc), "DELETE", "/models/m1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if svc.gotID != "m1" {
		t.Fatalf("model id not passed through")
	}
}

func TestHealthAndReady(t *testing.T) {
	mux := NewMux(&stubService{})
	if rec := doRequest(t, mux, "GET", "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz status %d", rec.Code)
	}
	if rec := doRequest(t, mux, "GET", "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("readyz status %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := doRequest(t, NewMux(&stubService{}), "GET", "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status %d", rec.Code)
	}
}
