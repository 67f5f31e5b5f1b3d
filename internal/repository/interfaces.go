package repository

import "context"

// UserRepository defines access to the Users collection. The handle is owned
// by the container and injected, never shared as package state.
type UserRepository interface {
	// Create inserts a new user document
	Create(ctx context.Context, user *User) error

	// FindByName looks a user up by display name
	FindByName(ctx context.Context, name string) (*User, error)

	// FindByEmail looks a user up by email address
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID looks a user up by user id
	FindByID(ctx context.Context, userID string) (*User, error)

	// UpdateProfile sets the name and email fields of an existing user
	UpdateProfile(ctx context.Context, userID, name, email string) error

	// AppendComplaint pushes a complaint onto the user's list, creating the
	// user document when absent
	AppendComplaint(ctx context.Context, userID string, complaint Complaint) error

	// Complaints returns the user's complaint list
	Complaints(ctx context.Context, userID string) ([]Complaint, error)

	// AllComplaints returns every complaint across all users
	AllComplaints(ctx context.Context) ([]Complaint, error)
}
