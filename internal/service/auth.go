package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mkudrin/photostore/internal/hash"
	"github.com/mkudrin/photostore/internal/logging"
	"github.com/mkudrin/photostore/internal/models"
	"github.com/mkudrin/photostore/internal/repo"
	"github.com/mkudrin/photostore/internal/token"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	// Refresh rows always live exactly this long, independent of the TTL
	// embedded in the refresh token itself.
	refreshRowTTL = 7 * 24 * time.Hour
)

var errInvalidCredentials = &AuthError{Message: "Invalid email or password"}

type AuthService struct {
	Repo       *repo.GormRepo
	Secret     []byte
	AccessTTL  int64
	RefreshTTL int64
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, *TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if verr := validateRegistration(in.Email, in.Password); verr != nil {
		l.Warn("register_failed", "status", 400, "reason", verr.Message)
		return nil, nil, verr
	}

	// Check-then-insert: a concurrent duplicate slips through to the unique
	// index, which then fails the insert.
	if _, err := s.Repo.FindUserByEmail(ctx, in.Email); err == nil {
		l.Warn("register_failed", "status", 400, "reason", "email_taken")
		return nil, nil, &ValidationError{Message: "Email already registered"}
	} else if !errors.Is(err, repo.ErrUserNotFound) {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash password", "error", err)
		return nil, nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: pwHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         RoleCustomer,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, nil, err
	}

	l.Info("register_success", "user_id", user.ID)
	return user, pair, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown_email")
			return nil, nil, errInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "bad_password", "user_id", user.ID)
		return nil, nil, errInvalidCredentials
	}

	// Prior sessions stay valid: one refresh row per login.
	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, nil, err
	}

	l.Info("login_success", "user_id", user.ID)
	return user, pair, nil
}

// Refresh rotates the presented refresh token: the old row is deleted before
// the replacement is written, so the token is single-use. The two store calls
// are not one transaction; a crash in between leaves the user with no valid
// refresh token and forces a re-login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := token.Verify(refreshToken, s.Secret)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "verify", "error", err)
		return nil, &AuthError{Message: "Invalid refresh token"}
	}

	rec, err := s.Repo.FindRefreshByToken(ctx, refreshToken)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	if rec == nil {
		l.Warn("refresh_failed", "status", 401, "reason", "row_missing")
		return nil, &AuthError{Message: "Refresh token not found"}
	}

	if time.Now().Unix() > rec.ExpiresAt {
		if err := s.Repo.DeleteRefreshByToken(ctx, refreshToken); err != nil {
			l.Error("refresh_cleanup_failed", "error", err)
		}
		l.Warn("refresh_failed", "status", 401, "reason", "row_expired")
		return nil, &AuthError{Message: "Refresh token expired"}
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "bad_subject")
		return nil, &AuthError{Message: "Invalid refresh token"}
	}
	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			if derr := s.Repo.DeleteRefreshByToken(ctx, refreshToken); derr != nil {
				l.Error("refresh_cleanup_failed", "error", derr)
			}
			l.Warn("refresh_failed", "status", 401, "reason", "user_gone")
			return nil, &AuthError{Message: "User not found"}
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}

	if err := s.Repo.DeleteRefreshByToken(ctx, refreshToken); err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("refresh_success", "user_id", user.ID)
	return pair, nil
}

// Logout is best-effort: the row delete is the point, the caller always gets
// a success response. Failures are only logged.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	l := logging.FromContext(ctx).With("svc", "auth.logout")
	if err := s.Repo.DeleteRefreshByToken(ctx, refreshToken); err != nil {
		l.Error("logout_delete_failed", "error", err)
		return
	}
	l.Info("logout_success")
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	claims := token.Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
	}

	access, err := token.Issue(claims, s.Secret, s.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := token.Issue(claims, s.Secret, s.RefreshTTL)
	if err != nil {
		return nil, err
	}

	rec := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(refreshRowTTL).Unix(),
	}
	if err := s.Repo.CreateRefreshToken(ctx, rec); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
