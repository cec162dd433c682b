package databases

//go generate: mockery --name SessionDatabase

import (
	"context"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

const sessionName = "sessions"

// SessionDatabase contains the methods to use with the session database
type SessionDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Session, error)
	InsertOne(ctx context.Context, session *models.Session) error
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
}

type sessionDatabase struct {
	db DatabaseHelper
}

// NewSessionDatabase initializes a new instance of session database with the provided db connection
func NewSessionDatabase(db DatabaseHelper) SessionDatabase {
	return &sessionDatabase{
		db: db,
	}
}

func (c *sessionDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Session, error) {
	session := &models.Session{}
	err := c.db.Collection(sessionName).FindOne(ctx, filter).Decode(&session)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (c *sessionDatabase) InsertOne(ctx context.Context, session *models.Session) error {
	_, err := c.db.Collection(sessionName).InsertOne(ctx, session)
	return err
}

func (c *sessionDatabase) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(sessionName).DeleteOne(ctx, filter)
}

func (c *sessionDatabase) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(sessionName).DeleteMany(ctx, filter)
}
