package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store records served predictions in a GORM-backed database.
type Store struct {
	db *gorm.DB
}

// NewStore migrates the schema and returns a store over the given database.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := GetMigrator(db).Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate prediction history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record builds a Prediction row from arbitrary request/response values.
// Marshalling failures surface as errors so callers can decide to log them;
// a recording failure must never fail the prediction itself.
func Record(task string, status string, input, output any, latency time.Duration) (*Prediction, error) {
	inputJson, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("could not marshal prediction input: %w", err)
	}
	outputJson, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("could not marshal prediction output: %w", err)
	}

	return &Prediction{
		Id:           uuid.New(),
		Task:         task,
		Status:       status,
		Input:        inputJson,
		Output:       outputJson,
		LatencyMs:    latency.Milliseconds(),
		CreationTime: time.Now().UTC(),
	}, nil
}

func (s *Store) Save(ctx context.Context, pred *Prediction) error {
	if err := s.db.WithContext(ctx).Create(pred).Error; err != nil {
		return fmt.Errorf("failed to save prediction record: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (Prediction, error) {
	var pred Prediction
	if err := s.db.WithContext(ctx).First(&pred, "id = ?", id).Error; err != nil {
		return Prediction{}, err
	}
	return pred, nil
}

// List returns records newest first. A non-positive limit falls back to 50.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Prediction, error) {
	if limit <= 0 {
		limit = 50
	}

	var preds []Prediction
	if err := s.db.WithContext(ctx).
		Order("creation_time DESC").
		Limit(limit).
		Offset(offset).
		Find(&preds).Error; err != nil {
		return nil, fmt.Errorf("failed to list prediction records: %w", err)
	}
	return preds, nil
}
