// Package client provides a small SDK for the model server's HTTP surface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"serving-backend/pkg/api"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

type Client struct {
	http *resty.Client
}

func New(baseURL string) *Client {
	return &Client{http: resty.New().SetBaseURL(baseURL)}
}

// PredictImage uploads image bytes and returns the raw prediction payload.
// The payload shape is defined by the server's postprocess function, so it is
// left as JSON for the caller to interpret.
func (c *Client) PredictImage(ctx context.Context, filename string, data []byte) (json.RawMessage, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		Post("/api/predict-image")
	if err != nil {
		return nil, fmt.Errorf("image prediction request failed: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("image prediction failed: %s: %s", res.Status(), res.String())
	}

	return json.RawMessage(res.Body()), nil
}

func (c *Client) PredictText(ctx context.Context, query string) (json.RawMessage, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(api.TextRequest{Query: query}).
		Post("/api/predict-text")
	if err != nil {
		return nil, fmt.Errorf("text prediction request failed: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("text prediction failed: %s: %s", res.Status(), res.String())
	}

	return json.RawMessage(res.Body()), nil
}

func (c *Client) PredictQnA(ctx context.Context, query, question string) (json.RawMessage, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(api.QnARequest{Query: query, Question: question}).
		Post("/api/QnA")
	if err != nil {
		return nil, fmt.Errorf("qna prediction request failed: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("qna prediction failed: %s: %s", res.Status(), res.String())
	}

	return json.RawMessage(res.Body()), nil
}

func (c *Client) ListPredictions(ctx context.Context, limit, offset int) ([]api.Prediction, error) {
	var preds []api.Prediction

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"limit":  strconv.Itoa(limit),
			"offset": strconv.Itoa(offset),
		}).
		SetResult(&preds).
		Get("/api/predictions")
	if err != nil {
		return nil, fmt.Errorf("list predictions request failed: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("list predictions failed: %s: %s", res.Status(), res.String())
	}

	return preds, nil
}

func (c *Client) GetPrediction(ctx context.Context, id uuid.UUID) (api.Prediction, error) {
	var pred api.Prediction

	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&pred).
		Get("/api/predictions/" + id.String())
	if err != nil {
		return api.Prediction{}, fmt.Errorf("get prediction request failed: %w", err)
	}
	if res.IsError() {
		return api.Prediction{}, fmt.Errorf("get prediction failed: %s: %s", res.Status(), res.String())
	}

	return pred, nil
}

func (c *Client) Docs(ctx context.Context, docsURL string) (api.Docs, error) {
	if docsURL == "" {
		docsURL = "/docs"
	}

	var docs api.Docs
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&docs).
		Get(docsURL)
	if err != nil {
		return api.Docs{}, fmt.Errorf("docs request failed: %w", err)
	}
	if res.IsError() {
		return api.Docs{}, fmt.Errorf("docs request failed: %s: %s", res.Status(), res.String())
	}

	return docs, nil
}
