//go:build llama

package manager

import (
	"fmt"

	llama "github.com/go-skynet/go-llama.cpp"

	"modelmgrd/pkg/types"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaInstantiator loads gguf artifacts in-process via go-llama.cpp.
type llamaInstantiator struct {
	ctxSize int
}

// NewLlamaInstantiator returns the production Instantiator. ctxSize <= 0
// selects a 2048-token context.
func NewLlamaInstantiator(ctxSize int) Instantiator {
	if ctxSize <= 0 {
		ctxSize = 2048
	}
	return &llamaInstantiator{ctxSize: ctxSize}
}

func (a *llamaInstantiator) Instantiate(modelType types.ModelType, modelPath string) (Handle, error) {
	file, err := resolveModelFile(modelPath)
	if err != nil {
		return nil, err
	}
	switch modelType {
	case types.ModelTypeLLM:
		m, err := llama.New(file, llama.SetContext(a.ctxSize))
		if err != nil {
			return nil, err
		}
		return m, nil
	case types.ModelTypeEmbedding:
		m, err := llama.New(file, llama.SetContext(a.ctxSize), llama.EnableEmbeddings)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported model type: %s", modelType)
	}
}
