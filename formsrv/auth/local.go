package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/G-Node/formsrv/formsrv/db"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Mailer delivers confirmation links.
type Mailer interface {
	SendConfirmation(ctx context.Context, user *db.User, link string) error
}

// LogMailer writes confirmation links to the log instead of sending mail.
type LogMailer struct {
	Logger *zap.Logger
}

// SendConfirmation logs the confirmation link for the user.
func (m LogMailer) SendConfirmation(_ context.Context, user *db.User, link string) error {
	m.Logger.Info("Confirmation link", zap.String("email", user.Email), zap.String("link", link))
	return nil
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LocalProvider keeps accounts in the store with bcrypt password hashes.
// New accounts must confirm their email address before they can sign in.
type LocalProvider struct {
	store   UserStore
	tokens  *Tokens
	mailer  Mailer
	baseURL string
}

// NewLocalProvider returns a provider for accounts in the given store.
// Confirmation links point to baseURL.
func NewLocalProvider(store UserStore, tokens *Tokens, mailer Mailer, baseURL string) *LocalProvider {
	return &LocalProvider{store: store, tokens: tokens, mailer: mailer, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// SignUp creates an unconfirmed account and sends its confirmation link.  If
// the link can't be sent, the account is removed again so that signing up
// can be retried with the same address.
func (p *LocalProvider) SignUp(ctx context.Context, req SignUpRequest) (*db.User, error) {
	email := db.NormalizeEmail(req.Email)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	if _, ok := db.ParseRole(string(req.Role)); !ok {
		return nil, ErrInvalidRole
	}
	if _, err := p.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &db.User{
		ID:           uuid.New().String(),
		Role:         req.Role,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := p.store.InsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if err := p.sendConfirmation(ctx, user); err != nil {
		if delErr := p.store.DeleteUser(ctx, user.ID); delErr != nil {
			return nil, fmt.Errorf("%w (removing account: %v)", err, delErr)
		}
		return nil, err
	}
	return user, nil
}

func (p *LocalProvider) sendConfirmation(ctx context.Context, user *db.User) error {
	token, err := p.tokens.Issue(user.ID, PurposeConfirm)
	if err != nil {
		return fmt.Errorf("issue confirmation token: %w", err)
	}
	link := fmt.Sprintf("%s/auth/confirm?token=%s", p.baseURL, url.QueryEscape(token))
	if err := p.mailer.SendConfirmation(ctx, user, link); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}

// SignIn checks the password of the account with the given email address.
func (p *LocalProvider) SignIn(ctx context.Context, login, password string) (*db.User, error) {
	user, err := p.store.GetUserByEmail(ctx, login)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Confirmed {
		return nil, ErrNotConfirmed
	}
	return user, nil
}

// Confirm verifies a confirmation token and marks its account confirmed.
func (p *LocalProvider) Confirm(ctx context.Context, token string) (*db.User, error) {
	id, err := p.tokens.Verify(token, PurposeConfirm)
	if err != nil {
		return nil, err
	}
	user, err := p.store.GetUser(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidToken
	} else if err != nil {
		return nil, err
	}
	if !user.Confirmed {
		if err := p.store.ConfirmUser(ctx, id); err != nil {
			return nil, err
		}
		user.Confirmed = true
	}
	return user, nil
}
