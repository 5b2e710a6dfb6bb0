// Package pipeline wires the classifier, the nutrition lookup and the report
// renderer into a single image-to-report call.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/Brownie44l1/foodlens/internal/nutrition"
	"github.com/Brownie44l1/foodlens/internal/report"
)

// ErrInvalidImage wraps image decode failures.
var ErrInvalidImage = errors.New("invalid image")

type Identifier interface {
	Identify(img image.Image) (string, error)
}

type NutritionLookup interface {
	Lookup(ctx context.Context, query string) (*nutrition.Result, error)
}

type Pipeline struct {
	identifier Identifier
	lookup     NutritionLookup
	render     report.Renderer
}

// Analysis holds every intermediate value of one run.
type Analysis struct {
	Label  string
	Result *nutrition.Result
	Report string
}

func New(identifier Identifier, lookup NutritionLookup, render report.Renderer) *Pipeline {
	if render == nil {
		render = report.Format
	}
	return &Pipeline{identifier: identifier, lookup: lookup, render: render}
}

// Analyze identifies the food in img, looks it up and renders the report.
// Any stage error aborts the run.
func (p *Pipeline) Analyze(ctx context.Context, img image.Image) (*Analysis, error) {
	label, err := p.identifier.Identify(img)
	if err != nil {
		return nil, fmt.Errorf("failed to identify image: %w", err)
	}

	logger := log.With().Str("label", label).Logger()
	logger.Info().Msg("Food identified")

	result, err := p.lookup.Lookup(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %q: %w", label, err)
	}

	text, err := p.render(result)
	if err != nil {
		return nil, fmt.Errorf("failed to format report for %q: %w", label, err)
	}

	logger.Debug().
		Int("records", len(result.Records)).
		Bool("api_failure", result.Failure != nil).
		Msg("Report rendered")

	return &Analysis{Label: label, Result: result, Report: text}, nil
}

func (p *Pipeline) Process(ctx context.Context, img image.Image) (string, error) {
	a, err := p.Analyze(ctx, img)
	if err != nil {
		return "", err
	}
	return a.Report, nil
}

// ProcessFile decodes the image at path and runs Process on it.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := DecodeImage(f)
	if err != nil {
		return "", err
	}
	return p.Process(ctx, img)
}

// DecodeImage decodes a JPEG, PNG or GIF image.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	log.Debug().
		Str("format", format).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("Image decoded")

	return img, format, nil
}
