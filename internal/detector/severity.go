package detector

import (
	"urbanfix-backend/internal/logger"

	"github.com/sirupsen/logrus"
)

// Severity is the derived urgency classification of a detection.
type Severity string

const (
	SeverityMinor    Severity = "Minor"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"

	// SeverityUnknown is returned when the image area is degenerate and no
	// relative area can be computed.
	SeverityUnknown Severity = "Unknown"
)

// severityThreshold pairs a relative-area floor with a confidence floor.
type severityThreshold struct {
	Area       float64
	Confidence float64
}

// SeverityThresholds are fixed classification constants. The Minor pair is
// kept for configurability but the decision rule never consults it: anything
// below the Moderate floors classifies as Minor.
var SeverityThresholds = map[Severity]severityThreshold{
	SeverityMinor:    {Area: 0.01, Confidence: 0.3},
	SeverityModerate: {Area: 0.05, Confidence: 0.6},
	SeveritySevere:   {Area: 1.0, Confidence: 0.8},
}

// ClassifySeverity maps a detection's bounding-box area, the total image area
// and the model confidence to a severity label. Pure and deterministic; the
// only degraded case is a zero image area, which yields SeverityUnknown.
func ClassifySeverity(bboxArea, imageArea, confidence float64) Severity {
	if imageArea == 0 {
		logger.Warn("Image area is zero, cannot calculate severity")
		return SeverityUnknown
	}

	relativeArea := bboxArea / imageArea
	logger.WithFields(logrus.Fields{
		"bbox_area":     bboxArea,
		"image_area":    imageArea,
		"relative_area": relativeArea,
		"confidence":    confidence,
	}).Debug("Calculating severity")

	severe := SeverityThresholds[SeveritySevere]
	moderate := SeverityThresholds[SeverityModerate]

	switch {
	case relativeArea >= severe.Area || confidence >= severe.Confidence:
		return SeveritySevere
	case relativeArea >= moderate.Area && confidence >= moderate.Confidence:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}
