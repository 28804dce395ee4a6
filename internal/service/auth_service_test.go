package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"buyinbuyout/internal/auth"
	"buyinbuyout/internal/config"
	"buyinbuyout/internal/model"
	"buyinbuyout/internal/repository"
	"buyinbuyout/internal/service"
	"buyinbuyout/internal/testutil"
	"buyinbuyout/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "service-test-secret"

func newAuthService(t *testing.T, jwtSecret string) service.AuthService {
	t.Helper()
	db := testutil.NewDB(t)
	return service.NewAuthService(repository.NewUserRepository(db), &config.Config{JWTSecret: jwtSecret})
}

func register(t *testing.T, svc service.AuthService, username, email string) *service.UserResponse {
	t.Helper()
	user, err := svc.Register(context.Background(), service.RegisterRequest{
		Username: username,
		Email:    email,
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	return user
}

func TestAuthService_Register(t *testing.T) {
	svc := newAuthService(t, secret)

	user := register(t, svc, "alice", "alice@example.com")

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestAuthService_RegisterConflicts(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewAuthService(repository.NewUserRepository(db), &config.Config{JWTSecret: secret})
	alice := register(t, svc, "alice", "alice@example.com")

	var before model.User
	require.NoError(t, db.First(&before, alice.ID).Error)

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"same email", "someone", "alice@example.com"},
		{"same username", "alice", "other@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), service.RegisterRequest{
				Username: tt.username,
				Email:    tt.email,
				Password: "whatever",
			})
			require.Error(t, err)
			assert.Equal(t, http.StatusConflict, apperror.StatusOf(err))
		})
	}

	var users []model.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1, "a conflicting registration must not insert a row")
	assert.Equal(t, before.ID, users[0].ID)
	assert.Equal(t, before.Username, users[0].Username)
	assert.Equal(t, before.Email, users[0].Email)
	assert.Equal(t, before.PasswordHash, users[0].PasswordHash)

	_, err := svc.Login(context.Background(), service.LoginRequest{Email: "alice@example.com", Password: "s3cret-pass"})
	assert.NoError(t, err, "original password still works")
}

func TestAuthService_Login(t *testing.T) {
	svc := newAuthService(t, secret)
	user := register(t, svc, "alice", "alice@example.com")

	tok, err := svc.Login(context.Background(), service.LoginRequest{Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := auth.Verify(tok.AccessToken, []byte(secret))
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, "alice", claims.Name)
	assert.Equal(t, auth.Issuer, claims.Issuer)
	assert.WithinDuration(t, claims.IssuedAt.Add(auth.AccessTokenTTL), claims.ExpiresAt.Time, time.Second)
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newAuthService(t, secret)
	register(t, svc, "alice", "alice@example.com")

	_, wrongPassword := svc.Login(context.Background(), service.LoginRequest{Email: "alice@example.com", Password: "nope"})
	_, unknownEmail := svc.Login(context.Background(), service.LoginRequest{Email: "ghost@example.com", Password: "s3cret-pass"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, http.StatusUnauthorized, apperror.StatusOf(wrongPassword))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_LoginWithoutSecretIsInternal(t *testing.T) {
	svc := newAuthService(t, "")
	register(t, svc, "alice", "alice@example.com")

	_, err := svc.Login(context.Background(), service.LoginRequest{Email: "alice@example.com", Password: "s3cret-pass"})

	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrEmptySecret)
	assert.Equal(t, http.StatusInternalServerError, apperror.StatusOf(err))
}

func TestAuthService_Me(t *testing.T) {
	svc := newAuthService(t, secret)
	user := register(t, svc, "alice", "alice@example.com")

	me, err := svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "MEMBER", string(me.Role))

	_, err = svc.Me(context.Background(), user.ID+100)
	assert.Equal(t, http.StatusNotFound, apperror.StatusOf(err))
}
