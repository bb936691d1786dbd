package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/cliptube/backend/internal/models"
)

var (
	// ErrInvalidCredentials indicates the password check failed for a known user.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRefreshMismatch indicates the presented refresh token is not the one
	// currently stored for the user, typically because it was superseded by a
	// later login or refresh.
	ErrRefreshMismatch = errors.New("refresh token mismatch")
)

// UserStore captures the persistence operations the session lifecycle needs.
// Rotate must be an atomic compare-and-set on the stored refresh token so two
// concurrent refresh calls cannot both succeed with the same token.
type UserStore interface {
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	RotateRefreshToken(ctx context.Context, userID, previous, next string) error
	ClearRefreshToken(ctx context.Context, userID string) error
}

// SessionManager orchestrates login, refresh and logout around the token
// issuer and the user store. Each user holds a single refresh token slot, so
// every successful login or refresh invalidates prior sessions.
type SessionManager struct {
	users  UserStore
	tokens *TokenIssuer
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(users UserStore, tokens *TokenIssuer) *SessionManager {
	if users == nil || tokens == nil {
		panic("auth: session manager requires a user store and a token issuer")
	}
	return &SessionManager{users: users, tokens: tokens}
}

// Login authenticates the identifier (username or email) against the stored
// password hash. On success it issues a fresh token pair and overwrites the
// stored refresh token, invalidating any previously issued one.
func (m *SessionManager) Login(ctx context.Context, identifier, password string) (models.SessionTokens, models.User, error) {
	user, err := m.users.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return models.SessionTokens{}, models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.SessionTokens{}, models.User{}, ErrInvalidCredentials
	}

	tokens, err := m.tokens.IssuePair(user.ID)
	if err != nil {
		return models.SessionTokens{}, models.User{}, err
	}

	if err := m.users.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return models.SessionTokens{}, models.User{}, err
	}

	return tokens, user, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// carry a valid signature, be unexpired, belong to an existing user, and match
// that user's stored token byte for byte. Rotation is single-use: a superseded
// token fails the compare-and-set and is rejected.
func (m *SessionManager) Refresh(ctx context.Context, presented string) (models.SessionTokens, error) {
	claims, err := m.tokens.VerifyRefresh(presented)
	if err != nil {
		return models.SessionTokens{}, err
	}

	user, err := m.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return models.SessionTokens{}, ErrInvalidToken
	}

	if user.RefreshToken == "" || user.RefreshToken != presented {
		return models.SessionTokens{}, ErrRefreshMismatch
	}

	tokens, err := m.tokens.IssuePair(user.ID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.users.RotateRefreshToken(ctx, user.ID, presented, tokens.RefreshToken); err != nil {
		if errors.Is(err, ErrRefreshMismatch) {
			return models.SessionTokens{}, ErrRefreshMismatch
		}
		return models.SessionTokens{}, err
	}

	return tokens, nil
}

// Logout clears the stored refresh token, permanently invalidating any
// previously issued refresh credential for the user.
func (m *SessionManager) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("auth: user id must be provided")
	}
	return m.users.ClearRefreshToken(ctx, userID)
}
