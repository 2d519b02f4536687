package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkudrin/photostore/internal/logging"
	"github.com/mkudrin/photostore/internal/models"
	"github.com/mkudrin/photostore/internal/repo"
	"github.com/mkudrin/photostore/internal/token"
)

// testCtx keeps service logging out of the test output.
func testCtx() context.Context {
	return logging.IntoContext(context.Background(), logging.NewNop())
}

func newTestService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))

	return &AuthService{
		Repo:       repo.New(db),
		Secret:     []byte("service-test-secret"),
		AccessTTL:  900,
		RefreshTTL: 7 * 86400,
	}
}

func registerAlice(t *testing.T, svc *AuthService) (*models.User, *TokenPair) {
	t.Helper()
	user, pair, err := svc.Register(testCtx(), RegisterInput{
		Email:     "alice@example.com",
		Password:  "GoodPass1",
		FirstName: "Alice",
	})
	require.NoError(t, err)
	return user, pair
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := testCtx()

	tests := []struct {
		name     string
		email    string
		password string
		wantMsg  string
	}{
		{"bad email", "not-an-email", "GoodPass1", "Invalid email address"},
		{"too short", "a@b.com", "weak", "Password must be at least 8 characters"},
		{"no uppercase", "a@b.com", "weakpassword", "Password must contain an uppercase letter"},
		{"no lowercase", "a@b.com", "WEAKPASSWORD1", "Password must contain a lowercase letter"},
		{"no digit", "a@b.com", "Weakpassword", "Password must contain a digit"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, RegisterInput{Email: tc.email, Password: tc.password})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantMsg, verr.Message)
		})
	}
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	user, pair := registerAlice(t, svc)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, RoleCustomer, user.Role)
	assert.NotEqual(t, "GoodPass1", user.PasswordHash)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// the refresh row backs the issued token
	rec, err := svc.Repo.FindRefreshByToken(testCtx(), pair.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, user.ID, rec.UserID)
	assert.InDelta(t, time.Now().Add(7*24*time.Hour).Unix(), rec.ExpiresAt, 5)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := testCtx()

	registerAlice(t, svc)

	// uniqueness check is case-folded
	_, _, err := svc.Register(ctx, RegisterInput{Email: "ALICE@Example.COM", Password: "GoodPass1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email already registered", verr.Message)
}

func TestRegister_PreservesEmailCase(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := testCtx()

	user, _, err := svc.Register(ctx, RegisterInput{Email: "Carol@Example.com", Password: "GoodPass1"})
	require.NoError(t, err)
	assert.Equal(t, "Carol@Example.com", user.Email)

	// lookup stays case-insensitive
	found, _, err := svc.Login(ctx, "carol@example.com", "GoodPass1")
	require.NoError(t, err)
	assert.Equal(t, "Carol@Example.com", found.Email)
}

func TestLogin_GenericFailure(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := testCtx()

	registerAlice(t, svc)

	_, _, errWrongPw := svc.Login(ctx, "alice@example.com", "WrongPass1")
	_, _, errNoUser := svc.Login(ctx, "nobody@example.com", "GoodPass1")

	var a, b *AuthError
	require.ErrorAs(t, errWrongPw, &a)
	require.ErrorAs(t, errNoUser, &b)
	assert.Equal(t, a.Message, b.Message, "failures must be indistinguishable")
}

func TestLogin_KeepsPriorSessions(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := testCtx()

	_, first := registerAlice(t, svc)

	_, second, err := svc.Login(ctx, "Alice@example.com", "GoodPass1")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// both sessions stay valid
	rec, err := svc.Repo.FindRefreshByToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotNil(t, rec)
	rec, err = svc.Repo.FindRefreshByToken(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestRefresh_Rotation(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := testCtx()

	_, pair := registerAlice(t, svc)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, next.AccessToken)
	require.NotEmpty(t, next.RefreshToken)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// old token row is gone, new one is live
	old, err := svc.Repo.FindRefreshByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Nil(t, old)
	fresh, err := svc.Repo.FindRefreshByToken(ctx, next.RefreshToken)
	require.NoError(t, err)
	assert.NotNil(t, fresh)

	// the presented token was single-use
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	var aerr *AuthError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "Refresh token not found", aerr.Message)
}

func TestRefresh_InvalidToken(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.Refresh(testCtx(), "not.a.token")
	var aerr *AuthError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "Invalid refresh token", aerr.Message)
}

func TestRefresh_ExpiredRow(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := testCtx()

	_, pair := registerAlice(t, svc)

	// the row, not the token, decides expiry
	err := svc.Repo.DB.Model(&models.RefreshToken{}).
		Where("token = ?", pair.RefreshToken).
		Update("expires_at", time.Now().Add(-time.Hour).Unix()).Error
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	var aerr *AuthError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "Refresh token expired", aerr.Message)

	// expired row was cleaned up
	rec, err := svc.Repo.FindRefreshByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRefresh_UserGone(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := testCtx()

	user, pair := registerAlice(t, svc)
	require.NoError(t, svc.Repo.DB.Delete(&models.User{}, "id = ?", user.ID).Error)

	_, err := svc.Refresh(ctx, pair.RefreshToken)
	var aerr *AuthError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "User not found", aerr.Message)

	rec, err := svc.Repo.FindRefreshByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestLogout_BestEffort(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := testCtx()

	_, pair := registerAlice(t, svc)

	svc.Logout(ctx, pair.RefreshToken)
	rec, err := svc.Repo.FindRefreshByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Nil(t, rec)

	// logging out twice, or with garbage, never panics or errors
	svc.Logout(ctx, pair.RefreshToken)
	svc.Logout(ctx, "no-such-token")
}

func TestIssuedTokensCarryPrincipal(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	user, pair := registerAlice(t, svc)

	claims, err := token.Verify(pair.AccessToken, svc.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, RoleCustomer, claims.Role)
}
