package mongodb

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/seedlift/seedlift/domain"
)

// UserRepositoryMongo implements domain.UserRepository using MongoDB. Only
// the lookups the session core needs are exposed here; account management
// lives outside this service.
type UserRepositoryMongo struct {
	collection *mongo.Collection
}

// NewUserRepositoryMongo creates a new UserRepositoryMongo.
func NewUserRepositoryMongo(db *mongo.Database) domain.UserRepository {
	return &UserRepositoryMongo{
		collection: db.Collection(UsersCollection),
	}
}

// GetUserByID retrieves a user by primary id.
func (r *UserRepositoryMongo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		log.Error().Err(err).Str("id", id).Msg("Error getting user by id from MongoDB")
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepositoryMongo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		log.Error().Err(err).Msg("Error getting user by email from MongoDB")
		return nil, err
	}
	return &user, nil
}

var _ domain.UserRepository = (*UserRepositoryMongo)(nil)
