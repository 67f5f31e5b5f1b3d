package service

import (
	"context"
	"errors"
	"time"

	apperrors "urbanfix-backend/internal/errors"
	"urbanfix-backend/internal/logger"
	"urbanfix-backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminUserID = "admin"

	defaultSeverity = "Unknown"
	defaultStatus   = "Pending"
)

// Location is one complaint coordinate for the map view.
type Location struct {
	Latitude  string    `json:"latitude"`
	Longitude string    `json:"longitude"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Severity  string    `json:"severity"`
	Status    string    `json:"status"`
}

// UserService covers registration, login, profile CRUD and complaint reads.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, username, email, password string) (string, error)
	Profile(ctx context.Context, userID string) (*repository.User, error)
	UpdateProfile(ctx context.Context, userID, name, email string) error
	Complaints(ctx context.Context, userID string) ([]repository.Complaint, error)
	Locations(ctx context.Context) ([]Location, error)
}

type userService struct {
	users repository.UserRepository
}

// NewUserService creates a user service over the given repository.
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, name, email, password string) (string, error) {
	if name == "" || email == "" || password == "" {
		return "", apperrors.NewValidationError("All fields are required.", nil)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return "", apperrors.NewValidationError("Email is already registered", repository.ErrEmailTaken)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return "", apperrors.NewPersistenceError("Database error", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.NewInternalError("failed to hash password", err)
	}

	user := &repository.User{
		UserID:   uuid.New().String(),
		Name:     name,
		Email:    email,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", apperrors.NewPersistenceError("Database error", err)
	}

	logger.WithField("user_id", user.UserID).Info("Registered new user")
	return user.UserID, nil
}

func (s *userService) Login(ctx context.Context, username, email, password string) (string, error) {
	// Fixed admin account, no database lookup.
	if username == "admin" && password == "admin" {
		return adminUserID, nil
	}

	var user *repository.User
	var err error
	if username != "" {
		user, err = s.users.FindByName(ctx, username)
	} else {
		user, err = s.users.FindByEmail(ctx, email)
	}
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", apperrors.NewUnauthorizedError("Invalid username or password", err)
	}
	if err != nil {
		return "", apperrors.NewPersistenceError("Database error", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", apperrors.NewUnauthorizedError("Invalid username or password", nil)
	}
	return user.UserID, nil
}

func (s *userService) Profile(ctx context.Context, userID string) (*repository.User, error) {
	if userID == adminUserID {
		return &repository.User{
			UserID: adminUserID,
			Name:   "Administrator",
			Email:  "admin@example.com",
			Role:   "admin",
		}, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperrors.NewNotFoundError("User not found", err)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("Database error", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID, name, email string) error {
	if name == "" || email == "" {
		return apperrors.NewValidationError("All fields are required.", nil)
	}

	err := s.users.UpdateProfile(ctx, userID, name, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperrors.NewNotFoundError("User not found.", err)
	}
	if err != nil {
		return apperrors.NewPersistenceError("Database error", err)
	}
	return nil
}

func (s *userService) Complaints(ctx context.Context, userID string) ([]repository.Complaint, error) {
	complaints, err := s.users.Complaints(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperrors.NewNotFoundError("User not found", err)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("Database error", err)
	}
	return complaints, nil
}

func (s *userService) Locations(ctx context.Context) ([]Location, error) {
	complaints, err := s.users.AllComplaints(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("Failed to fetch pothole locations", err)
	}

	locations := make([]Location, 0, len(complaints))
	for _, c := range complaints {
		if c.Latitude == "" && c.Longitude == "" {
			continue
		}
		loc := Location{
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
			Message:   c.Message,
			Timestamp: c.Timestamp,
			Severity:  c.Severity,
			Status:    c.Status,
		}
		if loc.Severity == "" {
			loc.Severity = defaultSeverity
		}
		if loc.Status == "" {
			loc.Status = defaultStatus
		}
		locations = append(locations, loc)
	}
	return locations, nil
}
