package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "Users"

// MongoUserRepository implements UserRepository over a MongoDB collection.
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a repository bound to the Users collection
// of the given database.
func NewMongoUserRepository(client *mongo.Client, database string) *MongoUserRepository {
	return &MongoUserRepository{
		col: client.Database(database).Collection(usersCollection),
	}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *User) error {
	if _, err := r.col.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) FindByName(ctx context.Context, name string) (*User, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) FindByID(ctx context.Context, userID string) (*User, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := r.col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, userID, name, email string) error {
	result, err := r.col.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"name": name, "email": email}},
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) AppendComplaint(ctx context.Context, userID string, complaint Complaint) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$push": bson.M{"complaints": complaint}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to append complaint: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) Complaints(ctx context.Context, userID string) ([]Complaint, error) {
	user, err := r.findOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	return user.Complaints, nil
}

func (r *MongoUserRepository) AllComplaints(ctx context.Context) ([]Complaint, error) {
	cursor, err := r.col.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"complaints": 1, "_id": 0}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer cursor.Close(ctx)

	var all []Complaint
	for cursor.Next(ctx) {
		var doc struct {
			Complaints []Complaint `bson:"complaints"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode complaints: %w", err)
		}
		all = append(all, doc.Complaints...)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error while reading complaints: %w", err)
	}
	return all, nil
}
