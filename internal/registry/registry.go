// Package registry is a durable store of model metadata. The full
// model_id → ModelInfo mapping lives in one JSON document that is
// rewritten wholesale on every mutation and read back on startup.
//
// The document is owned by a single process; there is no cross-process
// locking.
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"modelmgrd/pkg/types"
)

// DocumentName is the registry file created under the data directory.
const DocumentName = "model_registry.json"

// Registry tracks available and loaded models.
type Registry struct {
	path string
	log  zerolog.Logger

	mu     sync.Mutex
	models map[string]types.ModelInfo
}

// Open loads the registry document at path. A missing document starts the
// registry empty; a malformed one is logged and ignored rather than
// aborting startup.
func Open(path string, log zerolog.Logger) *Registry {
	r := &Registry{
		path:   path,
		log:    log.With().Str("component", "registry").Logger(),
		models: make(map[string]types.ModelInfo),
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.log.Error().Err(err).Str("path", path).Msg("failed to read model registry")
		}
		return r
	}
	if err := json.Unmarshal(b, &r.models); err != nil {
		r.log.Error().Err(err).Str("path", path).Msg("failed to parse model registry, starting empty")
		r.models = make(map[string]types.ModelInfo)
	}
	return r
}

// Register inserts or replaces the entry for info.ModelID and persists.
// Registering the same info twice is a no-op the second time.
func (r *Registry) Register(info types.ModelInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[info.ModelID] = info.Clone()
	r.persistLocked()
}

// Update has register semantics (replace by id); it exists as a separate
// name so call sites read as intent.
func (r *Registry) Update(info types.ModelInfo) {
	r.Register(info)
}

// Get returns the entry for id, if any.
func (r *Registry) Get(id string) (types.ModelInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.models[id]
	if !ok {
		return types.ModelInfo{}, false
	}
	return info.Clone(), true
}

// GetAll returns a copy of the full mapping. Mutating the result does not
// affect the registry.
func (r *Registry) GetAll() map[string]types.ModelInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]types.ModelInfo, len(r.models))
	for id, info := range r.models {
		out[id] = info.Clone()
	}
	return out
}

// Remove deletes the entry for id and persists. Returns false when id was
// not present; a missing id is not an error.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[id]; !ok {
		return false
	}
	delete(r.models, id)
	r.persistLocked()
	return true
}

// Len reports the number of registered models.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.models)
}

// persistLocked rewrites the whole document. A write failure is logged and
// otherwise ignored: in-memory state stays authoritative for the rest of
// the process lifetime.
func (r *Registry) persistLocked() {
	b, err := json.MarshalIndent(r.models, "", "  ")
	if err != nil {
		r.log.Error().Err(err).Msg("failed to encode model registry")
		return
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		r.log.Error().Err(err).Str("path", r.path).Msg("failed to create registry directory")
		return
	}
	if err := os.WriteFile(r.path, b, 0o644); err != nil {
		r.log.Error().Err(err).Str("path", r.path).Msg("failed to save model registry")
	}
}
