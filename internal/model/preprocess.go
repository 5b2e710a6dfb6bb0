package model

import (
	"image"
	"strings"

	"github.com/nfnt/resize"
)

// ShortLabel cuts an ImageNet-style class name ("hotdog, hot dog, red hot")
// down to its first synonym.
func ShortLabel(class string) string {
	name, _, _ := strings.Cut(class, ",")
	return strings.TrimSpace(name)
}

// Preprocess converts an image to the normalized CHW float32 layout the model expects.
func Preprocess(img image.Image, meta Metadata) []float32 {
	size := uint(meta.ImageSize)
	resized := resize.Resize(size, size, img, resize.Bilinear)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height

	inputData := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			pixelIndex := y*width + x
			inputData[pixelIndex] = normalize(r, meta.Mean[0], meta.Std[0])
			inputData[plane+pixelIndex] = normalize(g, meta.Mean[1], meta.Std[1])
			inputData[2*plane+pixelIndex] = normalize(b, meta.Mean[2], meta.Std[2])
		}
	}

	return inputData
}

func normalize(v uint32, mean, std float32) float32 {
	return (float32(v)/65535.0 - mean) / std
}
