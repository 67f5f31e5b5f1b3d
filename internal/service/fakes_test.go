package service

import (
	"context"
	"image"
	"time"

	"urbanfix-backend/internal/repository"
	"urbanfix-backend/internal/storage"
)

// fakeFileStore serves canned paths for report-image resolution
type fakeFileStore struct {
	processed map[string]string // image id -> path
	latest    string
	latestErr error
}

func (f *fakeFileStore) SaveTemp(data []byte) (string, error) { return "", nil }

func (f *fakeFileStore) SaveProcessed(img image.Image) (string, string, error) {
	return "", "", nil
}

func (f *fakeFileStore) Remove(path string) error { return nil }

func (f *fakeFileStore) ResolveProcessed(imageID string) (string, error) {
	if path, ok := f.processed[imageID]; ok {
		return path, nil
	}
	return "", storage.ErrImageNotFound
}

func (f *fakeFileStore) LatestProcessed() (string, error) {
	if f.latestErr != nil {
		return "", f.latestErr
	}
	return f.latest, nil
}

func (f *fakeFileStore) SweepTemp(maxAge time.Duration) (int, error) { return 0, nil }

// fakeMailer records the last report it was asked to send
type fakeMailer struct {
	err       error
	sent      bool
	imagePath string
	message   string
}

func (f *fakeMailer) SendReport(imagePath, message, latitude, longitude string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = true
	f.imagePath = imagePath
	f.message = message
	return nil
}

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	users      map[string]*repository.User // keyed by user_id
	appendErr  error
	complaints map[string][]repository.Complaint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:      make(map[string]*repository.User),
		complaints: make(map[string][]repository.Complaint),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *repository.User) error {
	f.users[user.UserID] = user
	return nil
}

func (f *fakeUserRepo) FindByName(ctx context.Context, name string) (*repository.User, error) {
	for _, u := range f.users {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, userID string) (*repository.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, userID, name, email string) error {
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Name, u.Email = name, email
	return nil
}

func (f *fakeUserRepo) AppendComplaint(ctx context.Context, userID string, complaint repository.Complaint) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.complaints[userID] = append(f.complaints[userID], complaint)
	return nil
}

func (f *fakeUserRepo) Complaints(ctx context.Context, userID string) ([]repository.Complaint, error) {
	if _, ok := f.users[userID]; !ok {
		return nil, repository.ErrUserNotFound
	}
	return f.complaints[userID], nil
}

func (f *fakeUserRepo) AllComplaints(ctx context.Context) ([]repository.Complaint, error) {
	var all []repository.Complaint
	for _, list := range f.complaints {
		all = append(all, list...)
	}
	return all, nil
}
