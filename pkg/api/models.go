package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TextRequest struct {
	Query string `json:"query"`
}

type QnARequest struct {
	Query    string `json:"query"`
	Question string `json:"question"`
}

type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Docs is the payload served at the configured docs URL.
type Docs struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Task        string  `json:"task"`
	Routes      []Route `json:"routes"`
}

type Prediction struct {
	Id           uuid.UUID       `json:"id"`
	Task         string          `json:"task"`
	Status       string          `json:"status"`
	Input        json.RawMessage `json:"input,omitempty"`
	Output       json.RawMessage `json:"output,omitempty"`
	LatencyMs    int64           `json:"latency_ms"`
	CreationTime time.Time       `json:"creation_time"`
}

type ListPredictionsParams struct {
	Limit  int `schema:"limit"`
	Offset int `schema:"offset"`
}
