package db

import (
	"context"
	"strings"
	"time"
)

// Role of a user account.
type Role string

const (
	Merchant Role = "merchant"
	Client   Role = "client"
)

// ParseRole returns the Role with the given name.
func ParseRole(name string) (Role, bool) {
	switch Role(name) {
	case Merchant, Client:
		return Role(name), true
	}
	return "", false
}

// User holds the account information of a merchant or client.
type User struct {
	// User ID (UUID)
	ID   string `xorm:"pk"`
	Role Role
	// Full name of the user (may be empty)
	FullName string
	// Email address, stored in lower case; unique
	Email string
	// bcrypt hash of the password; empty for accounts of external providers
	PasswordHash string
	// Whether the email address was confirmed
	Confirmed bool
	// Time when the account was created
	CreatedAt time.Time
}

// TableName returns the name of the table that stores users.
func (User) TableName() string {
	return "users"
}

// NormalizeEmail returns the form of an email address used for storage and
// lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// InsertUser inserts a new user into the database.
func (conn *Connection) InsertUser(ctx context.Context, user *User) error {
	user.Email = NormalizeEmail(user.Email)
	_, err := conn.engine.Context(ctx).Insert(user)
	return err
}

// GetUser retrieves a user from the database given its ID.
func (conn *Connection) GetUser(ctx context.Context, id string) (*User, error) {
	user := new(User)
	if err := found(conn.engine.Context(ctx).ID(id).Get(user)); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user from the database given their email
// address.
func (conn *Connection) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	user := new(User)
	if err := found(conn.engine.Context(ctx).Where("email = ?", NormalizeEmail(email)).Get(user)); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user and, through the foreign keys, their sessions
// and forms.
func (conn *Connection) DeleteUser(ctx context.Context, id string) error {
	_, err := conn.engine.Context(ctx).ID(id).Delete(new(User))
	return err
}

// ConfirmUser marks the email address of a user as confirmed.
func (conn *Connection) ConfirmUser(ctx context.Context, id string) error {
	n, err := conn.engine.Context(ctx).ID(id).Cols("confirmed").Update(&User{Confirmed: true})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
