package detector

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"sort"
	"strings"

	apperrors "urbanfix-backend/internal/errors"
	"urbanfix-backend/internal/inference"
	"urbanfix-backend/internal/logger"
	"urbanfix-backend/internal/storage"

	"github.com/sirupsen/logrus"
)

// NoDetectionsMessage is the fixed summary when nothing survived processing.
const NoDetectionsMessage = "No potholes found or processed."

// Pipeline runs one upload through inference, decoding, annotation and
// persistence, and assembles the response aggregate. One pass per request,
// no shared mutable state.
type Pipeline struct {
	inference inference.Client
	store     storage.FileStore
	annotator *Annotator
}

// NewPipeline creates a detection pipeline.
func NewPipeline(client inference.Client, store storage.FileStore) *Pipeline {
	return &Pipeline{
		inference: client,
		store:     store,
		annotator: NewAnnotator(),
	}
}

// skipped records one prediction excluded from the processed set.
type skipped struct {
	index  int
	reason string
}

// Detect runs the full pipeline over raw upload bytes. The only terminal
// failure after upload acceptance is an undecodable image; upstream failures
// degrade to an empty result and per-item faults are isolated.
func (p *Pipeline) Detect(ctx context.Context, fileBytes []byte) (*Result, error) {
	raw, _, err := p.inference.Infer(ctx, fileBytes)
	if err != nil {
		return nil, apperrors.NewInternalError("inference gateway failed", err)
	}

	src, format, err := image.Decode(bytes.NewReader(fileBytes))
	if err != nil {
		return nil, apperrors.NewDecodeError("Invalid image format or failed to decode", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	imageArea := float64(width * height)
	logger.WithFields(logrus.Fields{
		"format": format,
		"width":  width,
		"height": height,
	}).Info("Image decoded successfully")
	if imageArea == 0 {
		logger.Warn("Image area calculated as zero, severity will be Unknown")
	}

	// Annotate a copy; the upload stays untouched.
	annotated := image.NewRGBA(bounds)
	draw.Draw(annotated, bounds, src, bounds.Min, draw.Src)

	predictions := extractPredictions(raw)
	processed, skips := p.processPredictions(annotated, predictions, imageArea)

	counts := make(map[string]int)
	for _, det := range processed {
		counts[string(det.Severity)]++
	}

	// Persisting: a write failure degrades the saved-path field, never the request.
	var processedPath *string
	var imageID string
	if path, id, err := p.store.SaveProcessed(annotated); err != nil {
		logger.WithError(err).Error("Failed to save processed image")
	} else {
		processedPath = &path
		imageID = id
		logger.WithField("path", path).Info("Saved processed image with detections")
	}

	imageURL, err := encodeDataURL(annotated)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode annotated image", err)
	}

	result := &Result{
		PotholesDetected:   len(processed) > 0,
		DetectionsCount:    len(processed),
		SeverityCounts:     counts,
		Predictions:        processed,
		ImageURL:           imageURL,
		ProcessedImagePath: processedPath,
		ImageID:            imageID,
		Message:            buildMessage(counts, len(processed), len(skips)),
	}
	return result, nil
}

// processPredictions folds every raw prediction into either a processed
// detection or a skip record. One bad record never fails the batch.
func (p *Pipeline) processPredictions(img *image.RGBA, predictions []interface{}, imageArea float64) ([]Detection, []skipped) {
	processed := make([]Detection, 0, len(predictions))
	var skips []skipped

	for i, item := range predictions {
		record, ok := item.(map[string]interface{})
		if !ok {
			skips = append(skips, skipped{index: i, reason: fmt.Sprintf("expected object, got %T", item)})
			logger.WithField("index", i).Warn("Skipping prediction with invalid structure")
			continue
		}

		det, err := parseDetection(record)
		if err != nil {
			skips = append(skips, skipped{index: i, reason: err.Error()})
			logger.WithError(err).WithField("index", i).Warn("Skipping malformed prediction")
			continue
		}

		det.Severity = ClassifySeverity(det.Width*det.Height, imageArea, det.Confidence)
		p.annotator.Annotate(img, det)
		processed = append(processed, det)

		logger.WithFields(logrus.Fields{
			"index":      i,
			"class":      det.Class,
			"severity":   det.Severity,
			"confidence": det.Confidence,
		}).Debug("Processed prediction")
	}
	return processed, skips
}

// extractPredictions pulls the predictions list out of the raw inference
// response, coercing anything unexpected to an empty list.
func extractPredictions(raw map[string]interface{}) []interface{} {
	value, ok := raw["predictions"]
	if !ok {
		return nil
	}
	list, ok := value.([]interface{})
	if !ok {
		logger.WithField("type", fmt.Sprintf("%T", value)).Error("Expected predictions to be a list, falling back to empty")
		return nil
	}
	return list
}

// buildMessage assembles the human-readable summary, enumerating severity
// counts in sorted-name order for deterministic output.
func buildMessage(counts map[string]int, processedCount, skippedCount int) string {
	if processedCount == 0 {
		return NoDetectionsMessage
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%d %s", counts[name], name))
	}

	message := fmt.Sprintf("Potholes detected: %s", strings.Join(parts, ", "))
	if skippedCount > 0 {
		message += fmt.Sprintf(" (%d original predictions skipped due to errors).", skippedCount)
	}
	return message
}

func encodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
