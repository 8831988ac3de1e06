//go:build !llama

package manager

import (
	"fmt"

	"modelmgrd/pkg/types"
)

// This file provides a no-CGO stub for the llama instantiator, compiled
// when the 'llama' build tag is NOT set. Default builds and CI stay
// CGO-free; lifecycle behavior (path resolution, type checks, registry and
// handle bookkeeping) is unchanged.

var llamaBuilt = false

// StubHandle is the opaque handle produced without the llama runtime. It
// records what would have been loaded.
type StubHandle struct {
	ModelType types.ModelType
	Path      string
}

type llamaInstantiator struct {
	ctxSize int
}

// NewLlamaInstantiator returns a stub Instantiator that validates the
// artifact on disk but loads no runtime.
func NewLlamaInstantiator(ctxSize int) Instantiator {
	return &llamaInstantiator{ctxSize: ctxSize}
}

func (a *llamaInstantiator) Instantiate(modelType types.ModelType, modelPath string) (Handle, error) {
	if !modelType.Valid() {
		return nil, fmt.Errorf("unsupported model type: %s", modelType)
	}
	file, err := resolveModelFile(modelPath)
	if err != nil {
		return nil, err
	}
	return &StubHandle{ModelType: modelType, Path: file}, nil
}
