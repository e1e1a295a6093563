package serve

import (
	"fmt"
	"serving-backend/internal/core"
)

// ModelServer holds the pieces every API needs: the task being served, the
// model callable, and the processor applied around it.
type ModelServer struct {
	task      TaskType
	model     core.Model
	processor *core.Processor
}

// NewModelServer validates the task tag and pairs the model with the given
// processor. A nil processor means the category default will be resolved
// when the API is constructed.
func NewModelServer(task string, model core.Model, processor *core.Processor) (*ModelServer, error) {
	taskType, err := ParseTaskType(task)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}

	return &ModelServer{task: taskType, model: model, processor: processor}, nil
}

func (s *ModelServer) Task() TaskType {
	return s.task
}

// resolveProcessor substitutes the category default when the caller did not
// supply a processor. A caller-supplied processor is always used as-is.
func (s *ModelServer) resolveProcessor(opts core.ProcessorOptions) *core.Processor {
	if s.processor != nil {
		return s.processor
	}

	switch s.task.Category() {
	case Vision:
		s.processor = core.NewVisionProcessor(opts)
	case NLP:
		s.processor = core.NewTextProcessor()
	}
	return s.processor
}
