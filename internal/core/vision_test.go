package core

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, width, height int, c color.NRGBA) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestVisionPreprocessDecodesAndResizes(t *testing.T) {
	pre := visionPreprocess(ProcessorOptions{ImageWidth: 4, ImageHeight: 4})

	out, err := pre(solidPNG(t, 8, 8, color.NRGBA{R: 200, G: 100, B: 50, A: 255}))
	require.NoError(t, err)

	tensor, ok := out.(*ImageTensor)
	require.True(t, ok, "expected an ImageTensor, got %T", out)
	assert.Equal(t, 4, tensor.Width)
	assert.Equal(t, 4, tensor.Height)
	require.Len(t, tensor.Pixels, 4)
	require.Len(t, tensor.Pixels[0], 4)

	// A solid image stays solid after resampling.
	assert.Equal(t, []float32{200, 100, 50}, tensor.Pixels[2][1])
}

func TestVisionPreprocessKeepsOriginalSize(t *testing.T) {
	pre := visionPreprocess(ProcessorOptions{})

	out, err := pre(solidPNG(t, 6, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))
	require.NoError(t, err)

	tensor := out.(*ImageTensor)
	assert.Equal(t, 6, tensor.Width)
	assert.Equal(t, 3, tensor.Height)
}

func TestVisionPreprocessNormalize(t *testing.T) {
	pre := visionPreprocess(ProcessorOptions{Normalize: true})

	out, err := pre(solidPNG(t, 2, 2, color.NRGBA{R: 255, G: 0, B: 51, A: 255}))
	require.NoError(t, err)

	tensor := out.(*ImageTensor)
	pixel := tensor.Pixels[0][0]
	assert.InDelta(t, 1.0, pixel[0], 1e-6)
	assert.InDelta(t, 0.0, pixel[1], 1e-6)
	assert.InDelta(t, 0.2, pixel[2], 1e-6)
}

func TestVisionPreprocessErrors(t *testing.T) {
	pre := visionPreprocess(ProcessorOptions{})

	_, err := pre([]byte("this is not an image"))
	assert.ErrorContains(t, err, "failed to decode image")

	_, err = pre("wrong type entirely")
	assert.ErrorContains(t, err, "expects raw image bytes")
}

func TestVisionPostprocessLabels(t *testing.T) {
	post := visionPostprocess(ProcessorOptions{Labels: []string{"cat", "dog", "bird"}})

	out, err := post([]float32{0.2, 0.5, 0.3})
	require.NoError(t, err)

	labeled := out.([]LabeledScore)
	require.Len(t, labeled, 3)
	assert.Equal(t, LabeledScore{Label: "dog", Score: 0.5}, labeled[0])
	assert.Equal(t, LabeledScore{Label: "bird", Score: 0.3}, labeled[1])
	assert.Equal(t, LabeledScore{Label: "cat", Score: 0.2}, labeled[2])
}

func TestVisionPostprocessTopK(t *testing.T) {
	post := visionPostprocess(ProcessorOptions{Labels: []string{"a", "b", "c", "d"}, TopK: 2})

	out, err := post([]float64{0.1, 0.4, 0.3, 0.2})
	require.NoError(t, err)

	labeled := out.([]LabeledScore)
	require.Len(t, labeled, 2)
	assert.Equal(t, "b", labeled[0].Label)
	assert.Equal(t, "c", labeled[1].Label)
}

func TestVisionPostprocessNoLabelsPassesThrough(t *testing.T) {
	post := visionPostprocess(ProcessorOptions{})

	scores := []float32{0.9, 0.1}
	out, err := post(scores)
	require.NoError(t, err)
	assert.Equal(t, scores, out)
}

func TestVisionPostprocessScoreCountMismatch(t *testing.T) {
	post := visionPostprocess(ProcessorOptions{Labels: []string{"a", "b"}})

	_, err := post([]float32{0.1, 0.2, 0.7})
	assert.ErrorContains(t, err, "3 scores for 2 labels")
}

func TestVisionPostprocessRejectsNonScores(t *testing.T) {
	post := visionPostprocess(ProcessorOptions{Labels: []string{"a"}})

	_, err := post("not scores")
	assert.ErrorContains(t, err, "expects a score slice")
}

func TestTextProcessorIsPassthrough(t *testing.T) {
	p := NewTextProcessor()

	for _, value := range []any{"a query", 42, QnAInput{Query: "ctx", Question: "q"}} {
		out, err := p.Preprocess(value)
		require.NoError(t, err)
		assert.Equal(t, value, out)

		out, err = p.Postprocess(value)
		require.NoError(t, err)
		assert.Equal(t, value, out)
	}
}
