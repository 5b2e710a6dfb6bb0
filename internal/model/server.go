package model

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	ort "github.com/yalue/onnxruntime_go"
)

const topK = 5

// ErrInputSize is returned when a raw tensor does not match the model input shape.
var ErrInputSize = errors.New("input size does not match model input shape")

type inferFunc func(input []float32) ([]float32, error)

// Server owns the ONNX session and the tensors bound to it. The tensors are
// reused across calls, so inference is serialized.
type Server struct {
	Metadata Metadata

	mu    sync.Mutex
	infer inferFunc

	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

func NewServer(modelPath, metadataPath string) (*Server, error) {
	metadata, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	s := &Server{
		Metadata:     metadata,
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}
	s.infer = s.runSession

	log.Info().
		Str("model", modelPath).
		Int("classes", len(metadata.Classes)).
		Int("image_size", metadata.ImageSize).
		Msg("Model loaded")

	return s, nil
}

func newServerWithInfer(metadata Metadata, infer inferFunc) *Server {
	metadata.applyDefaults()
	return &Server{Metadata: metadata, infer: infer}
}

func (s *Server) runSession(input []float32) ([]float32, error) {
	copy(s.inputTensor.GetData(), input)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := s.outputTensor.GetData()
	logits := make([]float32, len(out))
	copy(logits, out)
	return logits, nil
}

// Predict runs the model on an already preprocessed CHW tensor.
func (s *Server) Predict(inputData []float32) (*Prediction, error) {
	if want := s.Metadata.InputSize(); len(inputData) != want {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInputSize, want, len(inputData))
	}

	s.mu.Lock()
	logits, err := s.infer(inputData)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return s.decode(logits)
}

// Classify preprocesses img and predicts its class.
func (s *Server) Classify(img image.Image) (*Prediction, error) {
	return s.Predict(Preprocess(img, s.Metadata))
}

// Identify returns the short label of the top-scoring class for img.
func (s *Server) Identify(img image.Image) (string, error) {
	prediction, err := s.Classify(img)
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("class", prediction.Class).
		Float32("confidence", prediction.Confidence).
		Msg("Image classified")

	return prediction.Label, nil
}

func (s *Server) decode(logits []float32) (*Prediction, error) {
	n := len(logits)
	if n > len(s.Metadata.Classes) {
		n = len(s.Metadata.Classes)
	}
	if n == 0 {
		return nil, fmt.Errorf("model returned no scores")
	}
	logits = logits[:n]

	maxIdx := 0
	maxVal := logits[0]
	for i, val := range logits {
		if val > maxVal {
			maxVal = val
			maxIdx = i
		}
	}

	probs := softmax(logits, maxVal)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return probs[order[a]] > probs[order[b]] })
	if len(order) > topK {
		order = order[:topK]
	}

	top := make([]ClassScore, 0, len(order))
	for _, idx := range order {
		top = append(top, ClassScore{Class: s.Metadata.Classes[idx], Probability: probs[idx]})
	}

	class := s.Metadata.Classes[maxIdx]
	return &Prediction{
		Class:      class,
		Label:      ShortLabel(class),
		Confidence: probs[maxIdx],
		Top:        top,
	}, nil
}

func softmax(logits []float32, maxVal float32) []float32 {
	probs := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxVal))
		probs[i] = float32(e)
		sum += e
	}
	for i := range probs {
		probs[i] = float32(float64(probs[i]) / sum)
	}
	return probs
}

func (s *Server) Close() {
	if s.session == nil {
		return
	}
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
	}
	s.session.Destroy()
	ort.DestroyEnvironment()
}
