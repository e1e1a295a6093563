package serve

import (
	"fmt"
	"strings"
)

// TaskType identifies which prediction task an API serves.
type TaskType string

const (
	ImageClassification TaskType = "IMAGE-CLASSIFICATION"
	ObjectDetection     TaskType = "OBJECT-DETECTION"
	TextClassification  TaskType = "TEXT-CLASSIFICATION"
	QuestionAnswering   TaskType = "QUESTION-ANS"
)

// Category groups task types by the kind of default processing they need.
type Category string

const (
	Vision Category = "VISION"
	NLP    Category = "NLP"
)

// AvailableTaskTypes lists every task type the server can be configured with.
func AvailableTaskTypes() []TaskType {
	return []TaskType{ImageClassification, ObjectDetection, TextClassification, QuestionAnswering}
}

// ParseTaskType validates a task tag. Matching is case-insensitive, the
// canonical form is upper case.
func ParseTaskType(s string) (TaskType, error) {
	task := TaskType(strings.ToUpper(strings.TrimSpace(s)))
	switch task {
	case ImageClassification, ObjectDetection, TextClassification, QuestionAnswering:
		return task, nil
	default:
		return "", fmt.Errorf("%s is not implemented, available types are %v", s, AvailableTaskTypes())
	}
}

// Category returns the processing category for a task type. It panics on
// task types that did not come from ParseTaskType or the constants above.
func (t TaskType) Category() Category {
	switch t {
	case ImageClassification, ObjectDetection:
		return Vision
	case TextClassification, QuestionAnswering:
		return NLP
	default:
		panic(fmt.Sprintf("unknown task type %q", string(t)))
	}
}

func (t TaskType) String() string {
	return string(t)
}
