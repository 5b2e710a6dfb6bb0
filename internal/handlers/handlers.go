package handlers

import (
	"context"
	"errors"
	"image"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Brownie44l1/foodlens/internal/model"
	"github.com/Brownie44l1/foodlens/internal/pipeline"
	"github.com/Brownie44l1/foodlens/internal/report"
)

const maxUploadSize = 10 << 20

type Classifier interface {
	Predict(inputData []float32) (*model.Prediction, error)
	Classify(img image.Image) (*model.Prediction, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, img image.Image) (*pipeline.Analysis, error)
}

type Handler struct {
	classifier Classifier
	analyzer   Analyzer
	lookup     pipeline.NutritionLookup
}

func NewHandler(classifier Classifier, analyzer Analyzer, lookup pipeline.NutritionLookup) *Handler {
	return &Handler{
		classifier: classifier,
		analyzer:   analyzer,
		lookup:     lookup,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Predict classifies a raw, already preprocessed input tensor.
func (h *Handler) Predict(c *gin.Context) {
	var req model.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	result, err := h.classifier.Predict(req.Image)
	if err != nil {
		if errors.Is(err, model.ErrInputSize) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("Prediction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// PredictFromImage classifies an uploaded image.
func (h *Handler) PredictFromImage(c *gin.Context) {
	img, ok := readUpload(c)
	if !ok {
		return
	}

	result, err := h.classifier.Classify(img)
	if err != nil {
		log.Error().Err(err).Msg("Prediction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Analyze runs the full image -> nutrition facts pipeline and returns the
// HTML report. Upstream API failures are part of the report, not an HTTP error.
func (h *Handler) Analyze(c *gin.Context) {
	img, ok := readUpload(c)
	if !ok {
		return
	}

	analysis, err := h.analyzer.Analyze(c.Request.Context(), img)
	if err != nil {
		var missing *report.MissingFieldError
		if errors.As(err, &missing) {
			log.Warn().Err(err).Msg("Incomplete nutrition record")
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("Analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
		return
	}

	c.Header("X-Food-Label", analysis.Label)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(analysis.Report))
}

// Nutrition exposes the filtered nutrition lookup for a food name.
func (h *Handler) Nutrition(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	result, err := h.lookup.Lookup(c.Request.Context(), query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Nutrition lookup failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Nutrition lookup failed"})
		return
	}

	if result.Failure != nil {
		c.JSON(result.Failure.StatusCode, gin.H{
			"error":  result.Failure.Body,
			"status": result.Failure.StatusCode,
		})
		return
	}

	c.JSON(http.StatusOK, result.Records)
}

func readUpload(c *gin.Context) (image.Image, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided. Use 'image' as the form field name"})
		return nil, false
	}

	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return nil, false
	}
	defer file.Close()

	log.Debug().Str("filename", fh.Filename).Int64("size", fh.Size).Msg("Received file")

	img, _, err := pipeline.DecodeImage(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image format. Supported: JPEG, PNG, GIF"})
		return nil, false
	}

	return img, true
}
