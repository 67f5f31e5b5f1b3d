package service

import (
	"context"

	"urbanfix-backend/internal/detector"
	"urbanfix-backend/internal/logger"

	"github.com/sirupsen/logrus"
)

// DetectionService runs uploads through the detection pipeline.
type DetectionService interface {
	Detect(ctx context.Context, fileBytes []byte, latitude, longitude string) (*detector.Result, error)
}

type detectionService struct {
	pipeline *detector.Pipeline
}

// NewDetectionService creates a detection service over the given pipeline.
func NewDetectionService(pipeline *detector.Pipeline) DetectionService {
	return &detectionService{pipeline: pipeline}
}

func (s *detectionService) Detect(ctx context.Context, fileBytes []byte, latitude, longitude string) (*detector.Result, error) {
	logger.WithFields(logrus.Fields{
		"size":      len(fileBytes),
		"latitude":  latitude,
		"longitude": longitude,
	}).Info("Running detection")

	return s.pipeline.Detect(ctx, fileBytes)
}
