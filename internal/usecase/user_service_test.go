package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/dto"
	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/usecase"
)

const testJWTSecret = "test-jwt-secret"

// MockCreditCache is a mock implementation of cache.CreditCache
type MockCreditCache struct {
	mock.Mock
}

func (m *MockCreditCache) Get(ctx context.Context, userID uuid.UUID) (int, bool) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Bool(1)
}

func (m *MockCreditCache) Set(ctx context.Context, userID uuid.UUID, credits int) {
	m.Called(ctx, userID, credits)
}

func (m *MockCreditCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	m.Called(ctx, userID)
}

func newUserService(env *testEnv, credits *MockCreditCache) (*usecase.UserService, *usecase.CredentialService) {
	creds := usecase.NewCredentialService(config.JWTConfig{Secret: testJWTSecret, Issuer: "analyzer", TTL: time.Hour},
		env.repos.User, zap.NewNop())
	return usecase.NewUserService(env.repos.User, env.repos.Payment, creds, credits, zap.NewNop()), creds
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	users, creds := newUserService(env, new(MockCreditCache))

	registered, err := users.Register(ctx, &dto.RegisterRequest{Email: "new@example.com", Password: "correct horse", Name: "New"})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "new@example.com", registered.User.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), registered.ExpiresAt, time.Minute)

	user, err := creds.Verify(ctx, "Bearer "+registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, user.ID.String())

	_, err = users.Register(ctx, &dto.RegisterRequest{Email: "new@example.com", Password: "another one"})
	assert.ErrorIs(t, err, domainErrors.ErrEmailTaken)

	loggedIn, err := users.Login(ctx, &dto.LoginRequest{Email: "new@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = users.Login(ctx, &dto.LoginRequest{Email: "new@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domainErrors.ErrInvalidCredentials)

	_, err = users.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, domainErrors.ErrInvalidCredentials)
}

func TestUserService_Profile(t *testing.T) {
	ctx := context.Background()

	t.Run("sums spendable credits on a cache miss", func(t *testing.T) {
		env := newTestEnv(t)
		env.paid(t, env.user)
		env.paid(t, env.user)
		env.order(t, env.user, "captured")

		credits := new(MockCreditCache)
		credits.On("Get", mock.Anything, env.user.ID).Return(0, false)
		credits.On("Set", mock.Anything, env.user.ID, 2).Return()
		users, _ := newUserService(env, credits)

		profile, err := users.Profile(ctx, env.user)
		require.NoError(t, err)
		assert.Equal(t, 2, profile.CreditsRemaining)
		assert.Equal(t, env.user.Email, profile.User.Email)
		credits.AssertExpectations(t)
	})

	t.Run("cache hit skips the ledger", func(t *testing.T) {
		env := newTestEnv(t)
		credits := new(MockCreditCache)
		credits.On("Get", mock.Anything, env.user.ID).Return(7, true)
		users, _ := newUserService(env, credits)

		profile, err := users.Profile(ctx, env.user)
		require.NoError(t, err)
		assert.Equal(t, 7, profile.CreditsRemaining)
		credits.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCredentialService_Verify(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, creds := newUserService(env, new(MockCreditCache))

	sign := func(method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}
	claims := func(subject string, expires time.Time) jwt.Claims {
		return usecase.Claims{
			Email: env.user.Email,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   subject,
				ExpiresAt: jwt.NewNumericDate(expires),
			},
		}
	}
	later := time.Now().Add(time.Hour)

	valid := sign(jwt.SigningMethodHS256, []byte(testJWTSecret), claims(env.user.ID.String(), later))
	user, err := creds.Verify(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, env.user.ID, user.ID)

	tests := []struct {
		name   string
		bearer string
	}{
		{name: "empty", bearer: ""},
		{name: "scheme only", bearer: "Bearer "},
		{name: "garbage", bearer: "Bearer not.a.token"},
		{name: "expired", bearer: sign(jwt.SigningMethodHS256, []byte(testJWTSecret), claims(env.user.ID.String(), time.Now().Add(-time.Minute)))},
		{name: "wrong secret", bearer: sign(jwt.SigningMethodHS256, []byte("other-secret"), claims(env.user.ID.String(), later))},
		{name: "wrong algorithm", bearer: sign(jwt.SigningMethodHS512, []byte(testJWTSecret), claims(env.user.ID.String(), later))},
		{name: "no expiry", bearer: sign(jwt.SigningMethodHS256, []byte(testJWTSecret), usecase.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: env.user.ID.String()},
		})},
		{name: "unknown user", bearer: sign(jwt.SigningMethodHS256, []byte(testJWTSecret), claims(uuid.NewString(), later))},
		{name: "subject not a uuid", bearer: sign(jwt.SigningMethodHS256, []byte(testJWTSecret), claims("admin", later))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := creds.Verify(ctx, tt.bearer)
			assert.ErrorIs(t, err, domainErrors.ErrUnauthenticated)
		})
	}

	t.Run("missing secret", func(t *testing.T) {
		unconfigured := usecase.NewCredentialService(config.JWTConfig{}, env.repos.User, zap.NewNop())
		_, err := unconfigured.Verify(ctx, valid)
		assert.ErrorIs(t, err, domainErrors.ErrMisconfigured)

		_, _, err = unconfigured.IssueToken(env.user)
		assert.ErrorIs(t, err, domainErrors.ErrMisconfigured)
	})
}
