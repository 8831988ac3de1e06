package types

// ModelType classifies what a model is used for. The set is closed;
// anything else is rejected at the API boundary.
type ModelType string

const (
	ModelTypeLLM           ModelType = "llm"
	ModelTypeEmbedding     ModelType = "embedding"
	ModelTypeAnalysis      ModelType = "analysis"
	ModelTypeSummarization ModelType = "summarization"
)

// Valid reports whether t is one of the known model types.
func (t ModelType) Valid() bool {
	switch t {
	case ModelTypeLLM, ModelTypeEmbedding, ModelTypeAnalysis, ModelTypeSummarization:
		return true
	}
	return false
}

// ModelTypes lists all valid model types, in a stable order.
func ModelTypes() []ModelType {
	return []ModelType{ModelTypeLLM, ModelTypeEmbedding, ModelTypeAnalysis, ModelTypeSummarization}
}

// ModelInfo is one registry entry per known model. ModelID is the sole
// identity key. IsLoaded is a projection of the manager's handle map;
// IsDownloading is advisory only (the download tracker is authoritative
// for an active download).
type ModelInfo struct {
	ModelID       string    `json:"model_id"`
	ModelType     ModelType `json:"model_type"`
	ModelName     string    `json:"model_name"`
	ModelPath     string    `json:"model_path,omitempty"`
	IsLoaded      bool      `json:"is_loaded"`
	IsDownloading bool      `json:"is_downloading"`
	SizeGB        float64   `json:"size_gb,omitempty"`
	Capabilities  []string  `json:"capabilities,omitempty"`
}

// Clone returns a deep copy of the entry so callers cannot mutate
// registry-internal state through shared slices.
func (m ModelInfo) Clone() ModelInfo {
	out := m
	if m.Capabilities != nil {
		out.Capabilities = append([]string(nil), m.Capabilities...)
	}
	return out
}

// ModelConfig is a download request: which repository to pull a model
// from and how to register it locally.
type ModelConfig struct {
	ModelID      string    `json:"model_id"`
	ModelType    ModelType `json:"model_type"`
	ModelName    string    `json:"model_name"`
	RepoID       string    `json:"repo_id"`
	Filename     string    `json:"filename,omitempty"`
	Capabilities []string  `json:"capabilities,omitempty"`
}

// Clone returns a deep copy of the request.
func (c ModelConfig) Clone() ModelConfig {
	out := c
	if c.Capabilities != nil {
		out.Capabilities = append([]string(nil), c.Capabilities...)
	}
	return out
}

// DownloadStatus is the lifecycle state of a download task. A task is
// created as Downloading and transitions exactly once to Completed or
// Failed, never back.
type DownloadStatus string

const (
	DownloadDownloading DownloadStatus = "downloading"
	DownloadCompleted   DownloadStatus = "completed"
	DownloadFailed      DownloadStatus = "failed"
)

// Terminal reports whether the status is a final state.
func (s DownloadStatus) Terminal() bool {
	return s == DownloadCompleted || s == DownloadFailed
}

// DownloadTask is a point-in-time snapshot of one download, keyed by the
// opaque task id returned when the download was started.
type DownloadTask struct {
	ModelConfig ModelConfig    `json:"model_config"`
	Status      DownloadStatus `json:"status"`
	// Progress is in [0,1] and never decreases while downloading.
	Progress float64 `json:"progress"`
	// Error is set iff Status is failed.
	Error string `json:"error,omitempty"`
	// LocalPath is set iff Status is completed.
	LocalPath string `json:"local_path,omitempty"`
}

// Clone returns a deep copy of the task snapshot.
func (t DownloadTask) Clone() DownloadTask {
	out := t
	out.ModelConfig = t.ModelConfig.Clone()
	return out
}
