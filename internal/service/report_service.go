package service

import (
	"context"
	"errors"
	"time"

	apperrors "urbanfix-backend/internal/errors"
	"urbanfix-backend/internal/logger"
	"urbanfix-backend/internal/mailer"
	"urbanfix-backend/internal/repository"
	"urbanfix-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReportRequest carries one /send-email submission.
type ReportRequest struct {
	UserID    string
	Message   string
	Latitude  string
	Longitude string

	// ImageID is the id returned by /detect. When absent or unknown the
	// newest processed image is used instead; that fallback is a known
	// race-prone link between detect and report.
	ImageID string
}

// ReportResult is the outcome of a report: the email went out, and the
// complaint write either succeeded or was logged as lost.
type ReportResult struct {
	ComplaintID     string
	ComplaintLogged bool
}

// ReportService emails a pothole report and records the complaint.
type ReportService interface {
	SendReport(ctx context.Context, req ReportRequest) (*ReportResult, error)
}

type reportService struct {
	store  storage.FileStore
	mailer mailer.Mailer
	users  repository.UserRepository
}

// NewReportService creates a report service.
func NewReportService(store storage.FileStore, m mailer.Mailer, users repository.UserRepository) ReportService {
	return &reportService{store: store, mailer: m, users: users}
}

func (s *reportService) SendReport(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	imagePath, err := s.resolveImage(req.ImageID)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"user_id": req.UserID,
		"image":   imagePath,
	}).Info("Sending pothole report email")

	if err := s.mailer.SendReport(imagePath, req.Message, req.Latitude, req.Longitude); err != nil {
		return nil, apperrors.NewInternalError("Failed to send email", err)
	}

	complaint := repository.Complaint{
		ComplaintID: uuid.New().String(),
		ImagePath:   imagePath,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Message:     req.Message,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.users.AppendComplaint(ctx, req.UserID, complaint); err != nil {
		// The email already went out; report the lost history instead of
		// failing the request.
		logger.WithError(err).WithField("user_id", req.UserID).Error("Failed to store complaint")
		return &ReportResult{ComplaintLogged: false}, nil
	}

	logger.WithFields(logrus.Fields{
		"user_id":      req.UserID,
		"complaint_id": complaint.ComplaintID,
	}).Info("Email sent and complaint logged")
	return &ReportResult{ComplaintID: complaint.ComplaintID, ComplaintLogged: true}, nil
}

// resolveImage maps an image id to its processed file, falling back to the
// most recently modified processed image.
func (s *reportService) resolveImage(imageID string) (string, error) {
	if imageID != "" {
		path, err := s.store.ResolveProcessed(imageID)
		if err == nil {
			return path, nil
		}
		logger.WithField("image_id", imageID).Warn("Image id did not resolve, falling back to latest processed image")
	}

	path, err := s.store.LatestProcessed()
	if errors.Is(err, storage.ErrNoProcessedImage) {
		return "", apperrors.NewValidationError("No processed image found to send", err)
	}
	if err != nil {
		return "", apperrors.NewPersistenceError("Server error accessing image storage", err)
	}
	return path, nil
}
