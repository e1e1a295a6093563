package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Model kinds understood by the demo server.
const (
	KindOnnxImage = "onnx-image"
	KindOnnxText  = "onnx-text"
	KindOpenAIQnA = "openai-qna"
	KindEcho      = "echo"
)

// Manifest describes a model to serve: which task it handles, what kind of
// adapter loads it, and where its artifacts live relative to the artifact
// store.
type Manifest struct {
	Name string `yaml:"name"`
	Task string `yaml:"task"`
	Kind string `yaml:"kind"`

	// Artifact is the object-store prefix holding the model files.
	Artifact string `yaml:"artifact"`

	ModelFile     string `yaml:"model_file"`
	TokenizerFile string `yaml:"tokenizer_file"`

	ImageWidth  int  `yaml:"image_width"`
	ImageHeight int  `yaml:"image_height"`
	Normalize   bool `yaml:"normalize"`

	Labels []string `yaml:"labels"`
	TopK   int      `yaml:"top_k"`

	OpenAIModel string  `yaml:"openai_model"`
	Temperature float64 `yaml:"temperature"`
}

// RequiresOnnxRuntime reports whether serving this model needs the ONNX
// runtime environment to be initialized first.
func (m *Manifest) RequiresOnnxRuntime() bool {
	return m.Kind == KindOnnxImage || m.Kind == KindOnnxText
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model manifest %s: %w", path, err)
	}

	switch m.Kind {
	case KindOnnxImage, KindOnnxText, KindOpenAIQnA, KindEcho:
	default:
		return nil, fmt.Errorf("unknown model kind %q in manifest %s", m.Kind, path)
	}
	if m.Task == "" {
		return nil, fmt.Errorf("manifest %s is missing a task", path)
	}

	return &m, nil
}
