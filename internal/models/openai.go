package models

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"serving-backend/internal/core"

	"github.com/openai/openai-go"
)

const qnaSystemPrompt = "Answer the question using only the provided context. If the context does not contain the answer, say so."

// OpenAIQnA answers question-answering requests with a chat completion. The
// API key is taken from the environment by the client.
type OpenAIQnA struct {
	client openai.Client
	model  string
	temp   float64
}

func NewOpenAIQnA(model string, temp float64) *OpenAIQnA {
	return &OpenAIQnA{
		client: openai.NewClient(),
		model:  model,
		temp:   temp,
	}
}

func (o *OpenAIQnA) Predict(ctx context.Context, input any) (any, error) {
	qna, ok := input.(core.QnAInput)
	if !ok {
		return nil, fmt.Errorf("openai qna model expects a query/question pair, got %T", input)
	}

	ctx, cancel := context.WithTimeout(ctx, 50*time.Second)
	defer cancel()

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(qnaSystemPrompt),
		openai.UserMessage(fmt.Sprintf("Context: %s\n\nQuestion: %s", qna.Query, qna.Question)),
	}

	chatOpts := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       o.model,
		Temperature: openai.Float(o.temp),
	}

	res, err := o.client.Chat.Completions.New(ctx, chatOpts)
	if err != nil {
		slog.Error("openai error: chat completions failed", "error", err)
		return nil, fmt.Errorf("openai generation failed: %w", err)
	}

	return res.Choices[0].Message.Content, nil
}
