package model

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	defaultInputName  = "input"
	defaultOutputName = "output"
	defaultImageSize  = 224
)

// Metadata describes the exported model: tensor shapes, the label vocabulary
// and the normalization the image processor applied during training.
type Metadata struct {
	InputShape  []int64   `json:"input_shape"`
	OutputShape []int64   `json:"output_shape"`
	Classes     []string  `json:"classes"`
	ImageSize   int       `json:"image_size"`
	Mean        []float32 `json:"mean,omitempty"`
	Std         []float32 `json:"std,omitempty"`
	InputName   string    `json:"input_name,omitempty"`
	OutputName  string    `json:"output_name,omitempty"`
}

// LoadMetadata reads and validates a model_metadata.json file.
func LoadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}

	meta.applyDefaults()
	if err := meta.validate(); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

func (m *Metadata) applyDefaults() {
	if m.ImageSize == 0 {
		m.ImageSize = defaultImageSize
	}
	if len(m.Mean) == 0 {
		m.Mean = []float32{0.5, 0.5, 0.5}
	}
	if len(m.Std) == 0 {
		m.Std = []float32{0.5, 0.5, 0.5}
	}
	if m.InputName == "" {
		m.InputName = defaultInputName
	}
	if m.OutputName == "" {
		m.OutputName = defaultOutputName
	}
	if len(m.InputShape) == 0 {
		m.InputShape = []int64{1, 3, int64(m.ImageSize), int64(m.ImageSize)}
	}
	if len(m.OutputShape) == 0 {
		m.OutputShape = []int64{1, int64(len(m.Classes))}
	}
}

func (m Metadata) validate() error {
	if len(m.Classes) == 0 {
		return fmt.Errorf("metadata has no classes")
	}
	if len(m.Mean) != 3 || len(m.Std) != 3 {
		return fmt.Errorf("metadata mean/std must have 3 channels, got %d/%d", len(m.Mean), len(m.Std))
	}
	for _, s := range m.Std {
		if s == 0 {
			return fmt.Errorf("metadata std must be non-zero")
		}
	}
	if want := int64(3 * m.ImageSize * m.ImageSize); m.InputSize() != int(want) {
		return fmt.Errorf("input shape %v does not match image size %d", m.InputShape, m.ImageSize)
	}
	return nil
}

// InputSize is the number of float32 values the model input tensor holds.
func (m Metadata) InputSize() int {
	if len(m.InputShape) == 0 {
		return 0
	}
	size := 1
	for _, dim := range m.InputShape {
		size *= int(dim)
	}
	return size
}

type PredictionRequest struct {
	Image []float32 `json:"image"`
}

type ClassScore struct {
	Class       string  `json:"class"`
	Probability float32 `json:"probability"`
}

// Prediction is the classifier output for one image. Label is Class cut
// down to its first synonym, which is what the nutrition lookup is queried with.
type Prediction struct {
	Class      string       `json:"class"`
	Label      string       `json:"label"`
	Confidence float32      `json:"confidence"`
	Top        []ClassScore `json:"top"`
}
