package core

import "context"

// Model is any callable that maps a (preprocessed) input to a prediction.
// Implementations decide which input shapes they accept; the serving layer
// passes through whatever the configured preprocess function produced.
type Model interface {
	Predict(ctx context.Context, input any) (any, error)
}

// ModelFunc adapts a plain function to the Model interface.
type ModelFunc func(ctx context.Context, input any) (any, error)

func (f ModelFunc) Predict(ctx context.Context, input any) (any, error) {
	return f(ctx, input)
}

// QnAInput is the model input for question-answering predictions.
type QnAInput struct {
	Query    string
	Question string
}
