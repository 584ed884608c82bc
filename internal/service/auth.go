// Package service orchestrates the credential and session state machine:
// register, login, logout and single-use refresh rotation.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/dibyam12/SMS-backend/internal/auth"
	"github.com/dibyam12/SMS-backend/internal/crypto"
	"github.com/dibyam12/SMS-backend/internal/model"
	"github.com/dibyam12/SMS-backend/internal/repository"
	"github.com/dibyam12/SMS-backend/internal/session"
)

// IdentityStore is the slice of the repository the auth flow touches.
type IdentityStore interface {
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	EmailExists(ctx context.Context, email string) bool
	UsernameExists(ctx context.Context, username string) bool
	CreateUser(ctx context.Context, user model.User) error
	AppendAudit(ctx context.Context, entry model.AuditEntry) error
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Auth owns the session-store entries exclusively; nothing else reads or
// writes refresh:<user_id> keys.
type Auth struct {
	users    IdentityStore
	sessions session.Store
	issuer   *auth.Issuer
	logger   *zap.Logger
}

func NewAuth(users IdentityStore, sessions session.Store, issuer *auth.Issuer, logger *zap.Logger) *Auth {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auth{users: users, sessions: sessions, issuer: issuer, logger: logger}
}

type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	Role      string
	IsStaff   bool
}

// Register creates one identity record. Email is checked before username,
// short-circuiting on the first conflict.
func (a *Auth) Register(ctx context.Context, input RegisterInput, clientIP string) (model.User, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Username = strings.TrimSpace(input.Username)
	if input.Email == "" || input.Username == "" || input.Password == "" ||
		strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return model.User{}, ErrValidation
	}
	role, ok := model.ParseRole(input.Role)
	if !ok {
		return model.User{}, ErrValidation
	}

	if a.users.EmailExists(ctx, input.Email) {
		return model.User{}, ErrDuplicateEmail
	}
	if a.users.UsernameExists(ctx, input.Username) {
		return model.User{}, ErrDuplicateUsername
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return model.User{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		Username:     &input.Username,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		IsActive:     true,
		IsStaff:      input.IsStaff,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := a.users.CreateUser(ctx, user); err != nil {
		// The existence checks race with concurrent registrations; the
		// unique indexes are the source of truth.
		if repository.IsUniqueViolation(err, "app_users_email_key") {
			return model.User{}, ErrDuplicateEmail
		}
		if repository.IsUniqueViolation(err, "app_users_username_key") {
			return model.User{}, ErrDuplicateUsername
		}
		return model.User{}, err
	}

	a.audit(ctx, user.ID, "user.register", clientIP, map[string]string{"role": role.String()})
	a.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", role.String()))
	return user, nil
}

// Login verifies credentials and opens the single active session for the
// user, overwriting any prior refresh entry. The identifier is a username or,
// when it contains an @, an email address.
func (a *Auth) Login(ctx context.Context, identifier, password, clientIP string) (TokenPair, error) {
	identifier = strings.TrimSpace(identifier)

	var user model.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = a.users.GetUserByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = a.users.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if err := crypto.CheckPassword(user.PasswordHash, password); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	pair, err := a.issuePair(ctx, user.ID, user.Role)
	if err != nil {
		return TokenPair{}, err
	}

	a.audit(ctx, user.ID, "user.login", clientIP, nil)
	a.logger.Info("user logged in", zap.String("user_id", user.ID))
	return pair, nil
}

// Logout is idempotent and never leaks whether the token was valid.
func (a *Auth) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" || !a.sessions.Enabled() {
		return
	}
	claims, err := a.issuer.Verify(refreshToken, auth.KindRefresh)
	if err != nil {
		// Already unusable; treat as logged out.
		return
	}
	if err := a.sessions.Delete(ctx, session.RefreshKey(claims.UserID)); err != nil {
		a.logger.Warn("session delete failed", zap.String("user_id", claims.UserID), zap.Error(err))
	}
}

// Refresh rotates the session: the presented token is single-use, and
// exactly one refresh token per user is valid at any moment.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if !a.sessions.Enabled() {
		return TokenPair{}, ErrRefreshDisabled
	}

	claims, err := a.issuer.Verify(refreshToken, auth.KindRefresh)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}

	key := session.RefreshKey(claims.UserID)
	storedHash, err := a.sessions.Get(ctx, key)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return TokenPair{}, ErrSessionRevoked
		}
		return TokenPair{}, err
	}
	if !crypto.TokenHashEqual(storedHash, crypto.HashToken(refreshToken)) {
		return TokenPair{}, ErrTokenMismatch
	}

	// Invalidate the presented token before issuing its replacement.
	if err := a.sessions.Delete(ctx, key); err != nil {
		return TokenPair{}, err
	}

	role, ok := model.ParseRole(claims.Role)
	if !ok {
		return TokenPair{}, ErrInvalidToken
	}
	pair, err := a.issuePair(ctx, claims.UserID, role)
	if err != nil {
		return TokenPair{}, err
	}

	a.logger.Debug("refresh token rotated", zap.String("user_id", claims.UserID))
	return pair, nil
}

func (a *Auth) issuePair(ctx context.Context, userID string, role model.Role) (TokenPair, error) {
	accessToken, err := a.issuer.Issue(userID, role, auth.KindAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := a.issuer.Issue(userID, role, auth.KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	// Overwrites any prior entry: at most one valid refresh token per user.
	key := session.RefreshKey(userID)
	if err := a.sessions.Set(ctx, key, crypto.HashToken(refreshToken), a.issuer.RefreshTTL()); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (a *Auth) audit(ctx context.Context, userID, action, clientIP string, metadata map[string]string) {
	entry := model.AuditEntry{
		ID:          uuid.NewString(),
		ActorUserID: &userID,
		Action:      action,
		CreatedAt:   time.Now().UTC(),
	}
	if clientIP != "" {
		entry.IPAddress = &clientIP
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			entry.Metadata = raw
		}
	}
	if err := a.users.AppendAudit(ctx, entry); err != nil {
		a.logger.Warn("audit append failed", zap.String("action", action), zap.Error(err))
	}
}
