package models

import (
	"context"
	"fmt"
	"os"

	"serving-backend/internal/core"

	ort "github.com/yalue/onnxruntime_go"
)

// OnnxImageClassifier runs an ONNX image classification network. It consumes
// the HWC tensor produced by the default vision preprocess and returns class
// probabilities, which the vision postprocess can map to labels.
type OnnxImageClassifier struct {
	session    *ort.DynamicAdvancedSession
	numClasses int
}

func LoadOnnxImageClassifier(modelPath string, numClasses int) (*OnnxImageClassifier, error) {
	onnxBytes, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read onnx model %s: %w", modelPath, err)
	}

	session, err := ort.NewDynamicAdvancedSessionWithONNXData(
		onnxBytes,
		[]string{"input"},
		[]string{"scores"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create onnx session: %w", err)
	}

	return &OnnxImageClassifier{session: session, numClasses: numClasses}, nil
}

func (m *OnnxImageClassifier) Predict(ctx context.Context, input any) (any, error) {
	tensor, ok := input.(*core.ImageTensor)
	if !ok {
		return nil, fmt.Errorf("onnx image classifier expects an image tensor, got %T", input)
	}

	h, w := tensor.Height, tensor.Width
	// NCHW layout, as exported by the common training frameworks.
	flat := make([]float32, 3*h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < 3; c++ {
				flat[c*h*w+y*w+x] = tensor.Pixels[y][x][c]
			}
		}
	}

	inT, err := ort.NewTensor(ort.NewShape(1, 3, int64(h), int64(w)), flat)
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

func (m *OnnxImageClassifier) Release() {
	m.session.Destroy()
}
