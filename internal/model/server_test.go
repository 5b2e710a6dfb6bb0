package model

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetadata() Metadata {
	return Metadata{
		InputShape:  []int64{1, 3, 2, 2},
		OutputShape: []int64{1, 3},
		Classes:     []string{"pizza, pizza pie", "cheeseburger", "hotdog, hot dog, red hot"},
		ImageSize:   2,
	}
}

func solid(c color.Color, w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestShortLabel(t *testing.T) {
	cases := map[string]string{
		"hotdog, hot dog, red hot": "hotdog",
		"cheeseburger":             "cheeseburger",
		"  ice cream, icecream":    "ice cream",
		"":                         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ShortLabel(in), in)
	}
}

func TestPredictPicksTopLogit(t *testing.T) {
	s := newServerWithInfer(testMetadata(), func(input []float32) ([]float32, error) {
		return []float32{0.1, -2, 4.5}, nil
	})

	got, err := s.Predict(make([]float32, 12))
	require.NoError(t, err)

	assert.Equal(t, "hotdog, hot dog, red hot", got.Class)
	assert.Equal(t, "hotdog", got.Label)
	require.Len(t, got.Top, 3)
	assert.Equal(t, got.Class, got.Top[0].Class)
	assert.Equal(t, "pizza, pizza pie", got.Top[1].Class)
	assert.Greater(t, got.Confidence, float32(0.9))

	var sum float32
	for _, c := range got.Top {
		sum += c.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestPredictRejectsWrongInputSize(t *testing.T) {
	called := false
	s := newServerWithInfer(testMetadata(), func(input []float32) ([]float32, error) {
		called = true
		return nil, nil
	})

	_, err := s.Predict(make([]float32, 5))
	assert.ErrorIs(t, err, ErrInputSize)
	assert.False(t, called)
}

func TestPredictPropagatesInferenceError(t *testing.T) {
	boom := errors.New("session closed")
	s := newServerWithInfer(testMetadata(), func(input []float32) ([]float32, error) {
		return nil, boom
	})

	_, err := s.Predict(make([]float32, 12))
	assert.ErrorIs(t, err, boom)
}

func TestPredictEmptyOutput(t *testing.T) {
	s := newServerWithInfer(testMetadata(), func(input []float32) ([]float32, error) {
		return []float32{}, nil
	})

	_, err := s.Predict(make([]float32, 12))
	assert.Error(t, err)
}

func TestIdentifyReturnsShortLabel(t *testing.T) {
	var seen []float32
	s := newServerWithInfer(testMetadata(), func(input []float32) ([]float32, error) {
		seen = input
		return []float32{9, 1, 2}, nil
	})

	label, err := s.Identify(solid(color.White, 8, 6))
	require.NoError(t, err)
	assert.Equal(t, "pizza", label)
	assert.Len(t, seen, 12)
}

func TestPreprocessNormalizesChannels(t *testing.T) {
	meta := testMetadata()
	meta.applyDefaults()

	data := Preprocess(solid(color.RGBA{R: 255, G: 0, B: 255, A: 255}, 10, 10), meta)
	require.Len(t, data, 12)

	for i := 0; i < 4; i++ {
		assert.InDelta(t, 1.0, data[i], 0.05, "red plane")
		assert.InDelta(t, -1.0, data[4+i], 0.05, "green plane")
		assert.InDelta(t, 1.0, data[8+i], 0.05, "blue plane")
	}
}

func TestLoadMetadata(t *testing.T) {
	dir := t.TempDir()

	t.Run("applies defaults", func(t *testing.T) {
		path := filepath.Join(dir, "meta.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"classes":["a","b"]}`), 0o644))

		meta, err := LoadMetadata(path)
		require.NoError(t, err)
		assert.Equal(t, 224, meta.ImageSize)
		assert.Equal(t, []int64{1, 3, 224, 224}, meta.InputShape)
		assert.Equal(t, []int64{1, 2}, meta.OutputShape)
		assert.Equal(t, "input", meta.InputName)
		assert.Equal(t, []float32{0.5, 0.5, 0.5}, meta.Std)
	})

	t.Run("rejects missing classes", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"image_size":224}`), 0o644))

		_, err := LoadMetadata(path)
		assert.ErrorContains(t, err, "no classes")
	})

	t.Run("rejects mismatched shape", func(t *testing.T) {
		path := filepath.Join(dir, "shape.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"classes":["a"],"image_size":32,"input_shape":[1,3,64,64]}`), 0o644))

		_, err := LoadMetadata(path)
		assert.ErrorContains(t, err, "does not match")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadMetadata(filepath.Join(dir, "nope.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
