package models

import (
	"context"
	"fmt"
	"os"

	"github.com/daulet/tokenizers"
	ort "github.com/yalue/onnxruntime_go"
)

// OnnxTextClassifier tokenizes query text and runs an ONNX sequence
// classification network, returning class probabilities.
type OnnxTextClassifier struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  *tokenizers.Tokenizer
	numClasses int
}

func LoadOnnxTextClassifier(modelPath, tokenizerPath string, numClasses int) (*OnnxTextClassifier, error) {
	onnxBytes, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read onnx model %s: %w", modelPath, err)
	}

	tk, err := tokenizers.FromFile(tokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("tokenizer load: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSessionWithONNXData(
		onnxBytes,
		[]string{"input_ids"},
		[]string{"logits"},
		nil,
	)
	if err != nil {
		tk.Close()
		return nil, fmt.Errorf("failed to create onnx session: %w", err)
	}

	return &OnnxTextClassifier{session: session, tokenizer: tk, numClasses: numClasses}, nil
}

func (m *OnnxTextClassifier) Predict(ctx context.Context, input any) (any, error) {
	text, ok := input.(string)
	if !ok {
		return nil, fmt.Errorf("onnx text classifier expects a string, got %T", input)
	}

	enc := m.tokenizer.EncodeWithOptions(text, true, tokenizers.WithReturnAllAttributes())
	if len(enc.IDs) == 0 {
		return nil, fmt.Errorf("tokenizer produced no tokens")
	}

	ids := make([]int64, len(enc.IDs))
	for i, v := range enc.IDs {
		ids[i] = int64(v)
	}

	inT, err := ort.NewTensor(ort.NewShape(1, int64(len(ids))), ids)
	if err != nil {
		return nil, err
	}
	defer inT.Destroy()

	outT, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(m.numClasses)))
	if err != nil {
		return nil, err
	}
	defer outT.Destroy()

	if err := m.session.Run([]ort.Value{inT}, []ort.Value{outT}); err != nil {
		return nil, fmt.Errorf("session run error: %w", err)
	}

	logits := make([]float32, m.numClasses)
	copy(logits, outT.GetData())

	return Softmax(logits), nil
}

func (m *OnnxTextClassifier) Release() {
	m.session.Destroy()
	m.tokenizer.Close()
}
