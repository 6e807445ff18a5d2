package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/seedlift/seedlift/domain"
)

// SessionRepositoryMongo implements domain.SessionRepository using MongoDB.
type SessionRepositoryMongo struct {
	collection *mongo.Collection
}

// NewSessionRepositoryMongo creates the repository and ensures the
// collection's indexes: unique refresh tokens, per-user lookups, the valid
// flag, and a TTL index that physically removes sessions once expires_at
// passes. Logical revocation never deletes documents; the TTL index is the
// only path that does.
func NewSessionRepositoryMongo(ctx context.Context, db *mongo.Database) (domain.SessionRepository, error) {
	repo := &SessionRepositoryMongo{
		collection: db.Collection(SessionsCollection),
	}

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "refresh_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "valid", Value: 1}},
		},
	}

	if _, err := repo.collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Warn().Err(err).Msg("Issue creating indexes for sessions collection (might already exist)")
	}

	return repo, nil
}

// InsertSession stores a new session document.
func (r *SessionRepositoryMongo) InsertSession(ctx context.Context, session *domain.Session) error {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New("session with this id or refresh token already exists")
		}
		log.Error().Err(err).Msg("Error storing session in MongoDB")
		return err
	}
	return nil
}

// GetSessionByID retrieves a session by its primary id, valid or not.
func (r *SessionRepositoryMongo) GetSessionByID(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		log.Error().Err(err).Str("id", id).Msg("Error getting session by id from MongoDB")
		return nil, err
	}
	return &session, nil
}

// FindSessions lists sessions matching the filter, newest first. Unless
// IncludeInvalid is set, only valid sessions are returned.
func (r *SessionRepositoryMongo) FindSessions(ctx context.Context, filter domain.SessionFilter) ([]*domain.Session, error) {
	query := sessionQuery(filter)
	if !filter.IncludeInvalid {
		query["valid"] = true
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		log.Error().Err(err).Msg("Error listing sessions from MongoDB")
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []*domain.Session{}
	if err = cursor.All(ctx, &sessions); err != nil {
		log.Error().Err(err).Msg("Error decoding listed sessions from MongoDB")
		return nil, err
	}
	return sessions, nil
}

// RotateRefreshToken conditionally replaces the stored refresh token. The
// filter pins the current value and the valid flag, so a concurrent
// rotation (or a replayed, already-rotated-out token) matches nothing and
// reports false instead of silently double-issuing.
func (r *SessionRepositoryMongo) RotateRefreshToken(ctx context.Context, sessionID, current, next string) (bool, error) {
	filter := bson.M{
		"_id":           sessionID,
		"refresh_token": current,
		"valid":         true,
	}
	update := bson.M{"$set": bson.M{
		"refresh_token": next,
		"updated_at":    time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Error().Err(err).Str("sessionID", sessionID).Msg("Error rotating refresh token in MongoDB")
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// RevokeSessions sets valid=false on one or all matching sessions.
func (r *SessionRepositoryMongo) RevokeSessions(ctx context.Context, filter domain.SessionFilter, single bool) error {
	query := sessionQuery(filter)
	update := bson.M{"$set": bson.M{
		"valid":      false,
		"updated_at": time.Now().UTC(),
	}}

	var err error
	if single {
		_, err = r.collection.UpdateOne(ctx, query, update)
	} else {
		_, err = r.collection.UpdateMany(ctx, query, update)
	}
	if err != nil {
		log.Error().Err(err).Bool("single", single).Msg("Error revoking sessions in MongoDB")
	}
	return err
}

// sessionQuery converts the typed filter into a bson query, without the
// default valid restriction.
func sessionQuery(filter domain.SessionFilter) bson.M {
	query := bson.M{}
	if filter.ID != "" {
		query["_id"] = filter.ID
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.RefreshToken != "" {
		query["refresh_token"] = filter.RefreshToken
	}
	return query
}

var _ domain.SessionRepository = (*SessionRepositoryMongo)(nil)
