package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session holds all the information for a given user Session
type Session struct {
	// Session ID (stored in the cookie)
	ID string `xorm:"pk"`
	// ID of the signed in user
	UserID string
	// Time when the session was created
	Created time.Time
	// Time after which the session is no longer valid
	Expires time.Time
}

// TableName returns the name of the table that stores sessions.
func (Session) TableName() string {
	return "sessions"
}

// NewSession creates a new session for a user with a new unique ID, valid
// for the given duration.
func NewSession(userID string, ttl time.Duration) *Session {
	sess := new(Session)
	sess.ID = uuid.New().String()
	sess.UserID = userID
	sess.Created = time.Now()
	sess.Expires = sess.Created.Add(ttl)
	return sess
}

// Expired reports whether the session is no longer valid at the given time.
func (sess *Session) Expired(now time.Time) bool {
	return !now.Before(sess.Expires)
}

// InsertSession inserts a new Session into the database.
func (conn *Connection) InsertSession(ctx context.Context, sess *Session) error {
	_, err := conn.engine.Context(ctx).Insert(sess)
	return err
}

// GetSession retrieves a session from the database given its ID.
func (conn *Connection) GetSession(ctx context.Context, id string) (*Session, error) {
	sess := new(Session)
	if err := found(conn.engine.Context(ctx).ID(id).Get(sess)); err != nil {
		return nil, err
	}
	return sess, nil
}

// DeleteSession removes a session from the database.  Deleting a session
// that does not exist is not an error.
func (conn *Connection) DeleteSession(ctx context.Context, id string) error {
	_, err := conn.engine.Context(ctx).ID(id).Delete(new(Session))
	return err
}
