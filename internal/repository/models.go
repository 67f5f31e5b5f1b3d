package repository

import "time"

// User is one document in the Users collection. The password hash never
// serializes to JSON.
type User struct {
	UserID     string      `bson:"user_id" json:"user_id"`
	Name       string      `bson:"name" json:"name"`
	Email      string      `bson:"email" json:"email"`
	Password   string      `bson:"password" json:"-"`
	Role       string      `bson:"role,omitempty" json:"role,omitempty"`
	Complaints []Complaint `bson:"complaints,omitempty" json:"complaints,omitempty"`
}

// Complaint is one report appended to a user's complaint list.
type Complaint struct {
	ComplaintID string    `bson:"complaint_id" json:"complaint_id"`
	ImagePath   string    `bson:"image_path" json:"image_path"`
	Latitude    string    `bson:"latitude" json:"latitude"`
	Longitude   string    `bson:"longitude" json:"longitude"`
	Message     string    `bson:"message" json:"message"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
	Severity    string    `bson:"severity,omitempty" json:"severity,omitempty"`
	Status      string    `bson:"status,omitempty" json:"status,omitempty"`
}
