// Package auth provides the identity providers of the service, the email
// confirmation tokens and the authorization guard used by every protected
// view.
package auth

import (
	"context"
	"errors"

	"github.com/G-Node/formsrv/formsrv/db"
)

var (
	// ErrInvalidCredentials is returned when a login or password is wrong.
	ErrInvalidCredentials = errors.New("invalid login or password")
	// ErrNotConfirmed is returned on sign in to an account whose email
	// address has not been confirmed.
	ErrNotConfirmed = errors.New("email address not confirmed")
	// ErrEmailTaken is returned on sign up with an address that already has
	// an account.
	ErrEmailTaken = errors.New("an account with this email address already exists")
	// ErrSignUpUnsupported is returned by providers that manage accounts
	// elsewhere.
	ErrSignUpUnsupported = errors.New("sign up is not supported")
	// ErrInvalidToken is returned for confirmation tokens that are malformed,
	// expired or issued for a different purpose.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidEmail is returned on sign up with a malformed email address.
	ErrInvalidEmail = errors.New("please enter a valid email address")
	// ErrWeakPassword is returned on sign up with a password shorter than
	// MinPasswordLength.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrInvalidRole is returned on sign up without a valid role.
	ErrInvalidRole = errors.New("please choose an account type")
)

// MinPasswordLength is the minimum length of passwords on sign up.
const MinPasswordLength = 8

// SignUpRequest holds the details of a new account.
type SignUpRequest struct {
	FullName string
	Email    string
	Password string
	Role     db.Role
}

// Provider verifies identities and manages accounts.
type Provider interface {
	// SignUp creates a new, unconfirmed account.
	SignUp(ctx context.Context, req SignUpRequest) (*db.User, error)
	// SignIn returns the account for the given credentials.
	SignIn(ctx context.Context, login, password string) (*db.User, error)
	// Confirm marks the account named by a confirmation token as confirmed.
	Confirm(ctx context.Context, token string) (*db.User, error)
}

// UserStore is the part of the store the providers need.
type UserStore interface {
	InsertUser(ctx context.Context, user *db.User) error
	GetUser(ctx context.Context, id string) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	ConfirmUser(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
}
