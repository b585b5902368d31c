package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/G-Node/formsrv/formsrv/db"
	"github.com/gogs/go-gogs-client"
	"github.com/google/uuid"
)

// gogsTokenName is the name of the access token created on the Gogs server
// for users that have none.
const gogsTokenName = "formsrv"

// GogsProvider signs in users with their account on a Gogs server.  The
// Gogs user's email address selects the account in the store.  An existing
// account is used as it is, keeping its role.  Without one, a confirmed
// merchant account is created on the first sign in.
type GogsProvider struct {
	store  UserStore
	server string
}

// NewGogsProvider returns a provider that checks credentials against the
// Gogs server at the given URL.
func NewGogsProvider(store UserStore, server string) *GogsProvider {
	return &GogsProvider{store: store, server: server}
}

// SignUp is not supported: accounts are managed on the Gogs server.
func (p *GogsProvider) SignUp(context.Context, SignUpRequest) (*db.User, error) {
	return nil, ErrSignUpUnsupported
}

// Confirm is not supported: Gogs accounts are confirmed on first sign in.
func (p *GogsProvider) Confirm(context.Context, string) (*db.User, error) {
	return nil, ErrInvalidToken
}

// SignIn verifies the credentials with the Gogs server and returns the
// account with the Gogs user's email address, creating a merchant account if
// there is none.
func (p *GogsProvider) SignIn(ctx context.Context, login, password string) (*db.User, error) {
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	client := gogs.NewClient(p.server, "")
	var userToken string
	tokens, err := client.ListAccessTokens(login, password)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if len(tokens) == 0 {
		token, err := client.CreateAccessToken(login, password, gogs.CreateAccessTokenOption{Name: gogsTokenName})
		if err != nil {
			return nil, ErrInvalidCredentials
		}
		userToken = token.Sha1
	} else {
		userToken = tokens[0].Sha1
	}

	info, err := gogs.NewClient(p.server, userToken).GetSelfInfo()
	if err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("gogs user %q has no email address", login)
	}

	user, err := p.store.GetUserByEmail(ctx, info.Email)
	if err == nil {
		return user, nil
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}
	user = &db.User{
		ID:        uuid.New().String(),
		Role:      db.Merchant,
		FullName:  info.FullName,
		Email:     info.Email,
		Confirmed: true,
		CreatedAt: time.Now(),
	}
	if err := p.store.InsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}
