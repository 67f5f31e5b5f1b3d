package detector

import (
	"errors"
	"fmt"
)

// Detection is one predicted object from the detection service, augmented
// with a derived severity before it is returned.
type Detection struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	Confidence float64  `json:"confidence"`
	Class      string   `json:"class"`
	Severity   Severity `json:"severity,omitempty"`
}

// Result is the aggregate a single /detect call produces. Immutable after
// construction; never persisted beyond the response.
type Result struct {
	PotholesDetected   bool           `json:"potholesDetected"`
	DetectionsCount    int            `json:"detectionsCount"`
	SeverityCounts     map[string]int `json:"severityCounts"`
	Predictions        []Detection    `json:"predictions"`
	ImageURL           string         `json:"imageUrl"`
	ProcessedImagePath *string        `json:"processedImagePath"`
	ImageID            string         `json:"imageId,omitempty"`
	Message            string         `json:"message"`
}

var errMissingKeys = errors.New("missing required keys")

// parseDetection validates one raw prediction record. JSON numbers arrive as
// float64; anything else for a numeric field is a type error and the record
// is skipped rather than aborting the batch.
func parseDetection(raw map[string]interface{}) (Detection, error) {
	var det Detection

	for _, key := range []string{"x", "y", "width", "height", "confidence", "class"} {
		if _, ok := raw[key]; !ok {
			return det, fmt.Errorf("%w: %s", errMissingKeys, key)
		}
	}

	var err error
	if det.X, err = asFloat(raw["x"]); err != nil {
		return det, fmt.Errorf("field x: %w", err)
	}
	if det.Y, err = asFloat(raw["y"]); err != nil {
		return det, fmt.Errorf("field y: %w", err)
	}
	if det.Width, err = asFloat(raw["width"]); err != nil {
		return det, fmt.Errorf("field width: %w", err)
	}
	if det.Height, err = asFloat(raw["height"]); err != nil {
		return det, fmt.Errorf("field height: %w", err)
	}
	if det.Confidence, err = asFloat(raw["confidence"]); err != nil {
		return det, fmt.Errorf("field confidence: %w", err)
	}

	class, ok := raw["class"].(string)
	if !ok {
		return det, fmt.Errorf("field class: expected string, got %T", raw["class"])
	}
	det.Class = class

	if det.Width <= 0 || det.Height <= 0 {
		return det, fmt.Errorf("invalid dimensions (w=%v, h=%v)", det.Width, det.Height)
	}
	return det, nil
}

func asFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
