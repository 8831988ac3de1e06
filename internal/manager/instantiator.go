package manager

import (
	"fmt"
	"os"
	"path/filepath"

	"modelmgrd/pkg/types"
)

// Handle is an opaque in-memory model instance produced by an
// Instantiator. The manager never inspects it; callers type-assert to the
// concrete runtime they wired in.
type Handle any

// Instantiator turns an on-disk artifact into a servable model handle.
// Implementations may fail with unsupported-type, file-not-found or
// runtime load errors.
type Instantiator interface {
	Instantiate(modelType types.ModelType, modelPath string) (Handle, error)
}

// RuntimeBuilt reports whether this binary carries the real llama runtime
// (built with -tags=llama) or the validating stub.
func RuntimeBuilt() bool { return llamaBuilt }

// resolveModelFile locates the artifact file for a model path. A path to
// a regular file is taken as-is; a directory is searched for the first
// *.gguf, then *.bin file.
func resolveModelFile(modelPath string) (string, error) {
	fi, err := os.Stat(modelPath)
	if err != nil {
		return "", fmt.Errorf("model path %s: %w", modelPath, err)
	}
	if !fi.IsDir() {
		return modelPath, nil
	}
	for _, pattern := range []string{"*.gguf", "*.bin"} {
		matches, err := filepath.Glob(filepath.Join(modelPath, pattern))
		if err == nil && len(matches) > 0 {
			return matches[0], nil
		}
	}
	return "", fmt.Errorf("no model files found in %s", modelPath)
}
