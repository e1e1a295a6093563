package history

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	StatusSucceeded string = "SUCCEEDED"
	StatusFailed    string = "FAILED"
)

// Prediction is one served prediction, recorded for auditing.
type Prediction struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Task   string `gorm:"size:32;not null"`
	Status string `gorm:"size:16;not null"`

	Input  datatypes.JSON
	Output datatypes.JSON

	LatencyMs    int64
	CreationTime time.Time
}
