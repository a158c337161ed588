// Package mongo provides a MongoDB-backed implementation of the credential
// store port, for deployments that already run the shared document database.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
)

const credentialsCollection = "credentials"

type credentialRecord struct {
	Principal    string `bson:"_id"`
	AccessToken  string `bson:"access_token"`
	RefreshToken string `bson:"refresh_token"`
	IssuedAt     int64  `bson:"issued_at"`
}

// Store implements the credential store port on a Mongo collection keyed by
// principal.
type Store struct {
	conn   *mongo.Client
	dbname string
	log    *zap.Logger
}

var _ ports.CredentialStore = (*Store)(nil)

// NewStore connects to the database and verifies the connection.
func NewStore(ctx context.Context, url, dbname string, log *zap.Logger) (*Store, error) {
	conn, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := conn.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{conn: conn, dbname: dbname, log: log}, nil
}

// Close disconnects from the database.
func (s *Store) Close(ctx context.Context) error {
	return s.conn.Disconnect(ctx)
}

func (s *Store) collection() *mongo.Collection {
	return s.conn.Database(s.dbname).Collection(credentialsCollection)
}

// Get returns the credential stored for the principal, or ErrUnauthorized
// when none exists.
func (s *Store) Get(ctx context.Context, principal string) (domain.Credential, error) {
	var record credentialRecord
	err := s.collection().FindOne(ctx, bson.M{"_id": principal}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Credential{}, fmt.Errorf("no credential for principal %q: %w", principal, domain.ErrUnauthorized)
		}
		return domain.Credential{}, fmt.Errorf("load credential: %w", err)
	}

	return domain.Credential{
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
		IssuedAt:     time.Unix(record.IssuedAt, 0).UTC(),
	}, nil
}

// Update upserts the credential for the principal and returns the stored
// value.
func (s *Store) Update(ctx context.Context, principal string, cred domain.Credential) (domain.Credential, error) {
	record := credentialRecord{
		Principal:    principal,
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		IssuedAt:     cred.IssuedAt.Unix(),
	}

	_, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": principal},
		bson.M{"$set": record},
		options.Update().SetUpsert(true))
	if err != nil {
		return domain.Credential{}, fmt.Errorf("store credential: %w", err)
	}

	s.log.Debug("credential stored", zap.String("principal", principal))
	return cred, nil
}
