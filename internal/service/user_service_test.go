package service

import (
	"context"
	"testing"

	"fritter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService() *UserService {
	return NewUserService(newUserRepoStub()).WithHashCost(bcrypt.MinCost)
}

func TestUserService_SignupHashesPassword(t *testing.T) {
	svc := newTestUserService()

	u, err := svc.Signup(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "hunter2", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("hunter2")))
}

func TestUserService_SignupRejects(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, "alice", "hunter2")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		code     string
	}{
		{"duplicate username", "alice", "other", models.CodeConflict},
		{"bad username", "al ice", "pw", models.CodeValidation},
		{"blank password", "carol", "  ", models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.username, tt.password)
			assertCode(t, err, tt.code)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()
	created, err := svc.Signup(ctx, "alice", "hunter2")
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assertCode(t, err, models.CodeUnauthorized)
	_, err = svc.Authenticate(ctx, "nobody", "hunter2")
	assertCode(t, err, models.CodeUnauthorized)
	_, err = svc.Authenticate(ctx, "", "")
	assertCode(t, err, models.CodeUnauthorized)
}

func TestUserService_Delete(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()
	u, err := svc.Signup(ctx, "alice", "hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID))
	_, err = svc.GetByID(ctx, u.ID)
	assertCode(t, err, models.CodeNotFound)
	assertCode(t, svc.Delete(ctx, u.ID), models.CodeNotFound)
}
