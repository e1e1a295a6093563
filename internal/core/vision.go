package core

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/disintegration/imaging"
)

// ImageTensor is the default vision preprocess output: pixel values in HWC
// order with three channels.
type ImageTensor struct {
	Width  int
	Height int
	Pixels [][][]float32
}

// LabeledScore is one entry of the default vision postprocess output.
type LabeledScore struct {
	Label string  `json:"label"`
	Score float32 `json:"score"`
}

func visionPreprocess(opts ProcessorOptions) ProcessFunc {
	return func(value any) (any, error) {
		raw, ok := value.([]byte)
		if !ok {
			return nil, fmt.Errorf("vision preprocess expects raw image bytes, got %T", value)
		}

		img, err := imaging.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}

		if opts.ImageWidth > 0 && opts.ImageHeight > 0 {
			img = imaging.Resize(img, opts.ImageWidth, opts.ImageHeight, imaging.Lanczos)
		}

		nrgba := imaging.Clone(img)
		bounds := nrgba.Bounds()
		w, h := bounds.Dx(), bounds.Dy()

		scale := float32(1)
		if opts.Normalize {
			scale = 1.0 / 255.0
		}

		pixels := make([][][]float32, h)
		for y := 0; y < h; y++ {
			row := make([][]float32, w)
			for x := 0; x < w; x++ {
				i := nrgba.PixOffset(x, y)
				row[x] = []float32{
					float32(nrgba.Pix[i]) * scale,
					float32(nrgba.Pix[i+1]) * scale,
					float32(nrgba.Pix[i+2]) * scale,
				}
			}
			pixels[y] = row
		}

		return &ImageTensor{Width: w, Height: h, Pixels: pixels}, nil
	}
}

func visionPostprocess(opts ProcessorOptions) ProcessFunc {
	return func(value any) (any, error) {
		if len(opts.Labels) == 0 {
			return value, nil
		}

		scores, err := toScores(value)
		if err != nil {
			return nil, err
		}
		if len(scores) != len(opts.Labels) {
			return nil, fmt.Errorf("model returned %d scores for %d labels", len(scores), len(opts.Labels))
		}

		labeled := make([]LabeledScore, len(scores))
		for i, s := range scores {
			labeled[i] = LabeledScore{Label: opts.Labels[i], Score: s}
		}
		sort.SliceStable(labeled, func(i, j int) bool { return labeled[i].Score > labeled[j].Score })

		if opts.TopK > 0 && opts.TopK < len(labeled) {
			labeled = labeled[:opts.TopK]
		}
		return labeled, nil
	}
}

func toScores(value any) ([]float32, error) {
	switch v := value.(type) {
	case []float32:
		return v, nil
	case []float64:
		scores := make([]float32, len(v))
		for i, s := range v {
			scores[i] = float32(s)
		}
		return scores, nil
	default:
		return nil, fmt.Errorf("vision postprocess expects a score slice, got %T", value)
	}
}
