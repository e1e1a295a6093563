package core

// ProcessFunc transforms a value on its way into or out of a model.
type ProcessFunc func(value any) (any, error)

// Processor pairs the functions applied around a model call. Either side may
// be nil, in which case that step is skipped by the serving layer.
type Processor struct {
	Preprocess  ProcessFunc
	Postprocess ProcessFunc
}

// ProcessorOptions configures the category-default processors. It replaces
// the original design's practice of rebinding keyword arguments into the
// default functions after construction: all configuration is fixed here, up
// front.
type ProcessorOptions struct {
	// ImageWidth and ImageHeight give the target size for decoded images.
	// Zero means keep the original dimensions.
	ImageWidth  int
	ImageHeight int

	// Normalize scales pixel values into [0, 1] instead of [0, 255].
	Normalize bool

	// Labels maps class indices to names in the vision postprocess step.
	// When empty, raw scores are returned.
	Labels []string

	// TopK limits how many labeled classes the vision postprocess returns.
	// Zero means all.
	TopK int
}

// NewVisionProcessor returns the default processor for vision tasks: decode
// uploaded bytes into a float32 tensor and map raw model scores back to
// labeled predictions.
func NewVisionProcessor(opts ProcessorOptions) *Processor {
	return &Processor{
		Preprocess:  visionPreprocess(opts),
		Postprocess: visionPostprocess(opts),
	}
}

// NewTextProcessor returns the default processor for natural-language tasks.
// Text models are expected to handle their own tokenization, so both steps
// pass the value through unchanged and no configuration applies.
func NewTextProcessor() *Processor {
	return &Processor{
		Preprocess:  passthrough,
		Postprocess: passthrough,
	}
}

func passthrough(value any) (any, error) {
	return value, nil
}
