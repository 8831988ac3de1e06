// Package manager owns the model lifecycle: which models are registered,
// which are loaded in memory, and which one is active per model type.
//
// All load/unload/switch/delete operations are serialized through one
// mutex, so within a single model id they observe a total order. Holding
// the lock across instantiation is a deliberate simplicity-over-throughput
// tradeoff: one slow load stalls other lifecycle calls, but never download
// tracking or plain reads.
package manager

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"modelmgrd/internal/download"
	"modelmgrd/internal/registry"
	"modelmgrd/pkg/types"
)

// Manager composes the registry and the download tracker and owns the map
// of currently loaded model handles.
type Manager struct {
	reg       *registry.Registry
	tracker   *download.Tracker
	inst      Instantiator
	modelsDir string
	log       zerolog.Logger

	mu     sync.Mutex
	loaded map[string]Handle
	active map[types.ModelType]string
}

// Config wires a Manager's dependencies. All fields except ModelsDir are
// required.
type Config struct {
	Registry     *registry.Registry
	Tracker      *download.Tracker
	Instantiator Instantiator
	ModelsDir    string
	Logger       zerolog.Logger
}

// New constructs a Manager. Loaded-state flags left over in the persisted
// registry from a previous process are cleared: the handle map starts
// empty and is the authority for what is loaded.
func New(cfg Config) *Manager {
	m := &Manager{
		reg:       cfg.Registry,
		tracker:   cfg.Tracker,
		inst:      cfg.Instantiator,
		modelsDir: cfg.ModelsDir,
		log:       cfg.Logger.With().Str("component", "manager").Logger(),
		loaded:    make(map[string]Handle),
		active:    make(map[types.ModelType]string),
	}
	for id, info := range m.reg.GetAll() {
		if info.IsLoaded {
			info.IsLoaded = false
			m.reg.Update(info)
			m.log.Info().Str("model_id", id).Msg("cleared stale loaded flag from previous run")
		}
	}
	return m
}

// ListAvailable returns all registered models.
func (m *Manager) ListAvailable() map[string]types.ModelInfo {
	return m.reg.GetAll()
}

// ListLoaded returns the registered models with a live handle. Taken under
// the lifecycle lock so the result is consistent with any in-flight
// load/unload.
func (m *Manager) ListLoaded() map[string]types.ModelInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]types.ModelInfo)
	for id, info := range m.reg.GetAll() {
		if info.IsLoaded {
			out[id] = info
		}
	}
	return out
}

// Download registers the model as downloading and starts a background
// download, returning the task id for status polling. Completion does not
// touch the registry entry again: callers poll the task and then Load.
func (m *Manager) Download(cfg types.ModelConfig) (string, error) {
	if cfg.ModelID == "" {
		return "", ErrInvalidConfig("model_id is required")
	}
	modelType := cfg.ModelType
	if modelType == "" {
		modelType = types.ModelTypeLLM
	}
	if !modelType.Valid() {
		return "", ErrInvalidConfig("unknown model type: " + string(cfg.ModelType))
	}
	name := cfg.ModelName
	if name == "" {
		name = cfg.ModelID
	}

	m.reg.Register(types.ModelInfo{
		ModelID:       cfg.ModelID,
		ModelType:     modelType,
		ModelName:     name,
		IsDownloading: true,
		Capabilities:  cfg.Capabilities,
	})

	id, err := m.tracker.Start(cfg)
	if err != nil {
		return "", err
	}
	downloadsStartedTotal.Inc()
	return id, nil
}

// DownloadStatus returns a snapshot of the download task, or false for an
// unknown id.
func (m *Manager) DownloadStatus(id string) (types.DownloadTask, bool) {
	return m.tracker.Status(id)
}

// Load brings a registered model into memory. Loading an already-loaded
// model is a logged no-op. On instantiation failure nothing is mutated.
func (m *Manager) Load(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(id)
}

func (m *Manager) loadLocked(id string) error {
	info, ok := m.reg.Get(id)
	if !ok {
		return ErrModelNotFound(id)
	}
	if _, ok := m.loaded[id]; ok {
		m.log.Info().Str("model_id", id).Msg("model already loaded")
		return nil
	}

	path := info.ModelPath
	if path == "" {
		path = filepath.Join(m.modelsDir, id)
	}
	handle, err := m.inst.Instantiate(info.ModelType, path)
	if err != nil {
		m.log.Error().Err(err).Str("model_id", id).Str("path", path).Msg("failed to load model")
		return ErrLoadFailed(id, err)
	}

	m.loaded[id] = handle
	info.IsLoaded = true
	info.IsDownloading = false
	m.reg.Update(info)
	loadsTotal.Inc()
	loadedModels.Set(float64(len(m.loaded)))
	m.log.Info().Str("model_id", id).Str("path", path).Msg("model loaded")
	return nil
}

// Unload drops the in-memory handle. The handle object itself is not
// invalidated; callers that obtained it earlier may finish with it.
func (m *Manager) Unload(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unloadLocked(id)
}

func (m *Manager) unloadLocked(id string) error {
	if _, ok := m.loaded[id]; !ok {
		return ErrNotLoaded(id)
	}
	delete(m.loaded, id)
	if info, ok := m.reg.Get(id); ok {
		info.IsLoaded = false
		m.reg.Update(info)
	}
	unloadsTotal.Inc()
	loadedModels.Set(float64(len(m.loaded)))
	m.log.Info().Str("model_id", id).Msg("model unloaded")
	return nil
}

// GetModel returns the live handle for id, if any. A caller may race a
// concurrent Unload and still receive the handle; only the map entry is
// removed by unloading.
func (m *Manager) GetModel(id string) (Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.loaded[id]
	return h, ok
}

// SwitchActive makes id the active model for modelType, loading it first
// when necessary (at most one load attempt).
func (m *Manager) SwitchActive(id string, modelType types.ModelType) error {
	if !modelType.Valid() {
		return ErrInvalidConfig("unknown model type: " + string(modelType))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loaded[id]; !ok {
		if err := m.loadLocked(id); err != nil {
			return err
		}
	}
	m.active[modelType] = id
	switchesTotal.Inc()
	m.log.Info().Str("model_id", id).Str("model_type", string(modelType)).Msg("switched active model")
	return nil
}

// GetActive returns the handle of the active model for modelType, if one
// has been selected and is still loaded.
func (m *Manager) GetActive(modelType types.ModelType) (Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.active[modelType]
	if !ok {
		return nil, false
	}
	h, ok := m.loaded[id]
	return h, ok
}

// Delete unloads the model if needed, removes it from the registry and
// deletes managed artifacts under the models directory. Artifacts behind
// an explicit model_path override are left alone; they were not placed by
// this daemon.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, registered := m.reg.Get(id)
	_ = m.unloadLocked(id) // best-effort; not-loaded is fine
	if !m.reg.Remove(id) {
		return ErrModelNotFound(id)
	}
	if registered && info.ModelPath == "" && m.modelsDir != "" {
		dir := filepath.Join(m.modelsDir, id)
		if err := os.RemoveAll(dir); err != nil {
			m.log.Error().Err(err).Str("model_id", id).Str("path", dir).Msg("failed to delete model artifacts")
		}
	}
	m.log.Info().Str("model_id", id).Msg("model deleted")
	return nil
}
