package repository_test

import (
	"context"
	"errors"
	"testing"

	"buyinbuyout/internal/model"
	"buyinbuyout/internal/repository"
	"buyinbuyout/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_FindByEmailOrUsername(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	existing := testutil.SeedUser(t, db, "alice", model.RoleMember)

	byEmail, err := repo.FindByEmailOrUsername(ctx, "alice@example.com", "someone-else")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, byEmail.ID)

	byName, err := repo.FindByEmailOrUsername(ctx, "other@example.com", "alice")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, byName.ID)

	_, err = repo.FindByEmailOrUsername(ctx, "nobody@example.com", "nobody")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestUserRepository_DuplicateEmailIsTranslated(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)

	testutil.SeedUser(t, db, "alice", model.RoleMember)
	err := repo.Create(context.Background(), &model.User{
		Username:     "alice2",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Role:         model.RoleMember,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_GetRole(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)

	approver := testutil.SeedUser(t, db, "boss", model.RoleApprover)
	role, err := repo.GetRole(context.Background(), approver.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleApprover, role)

	_, err = repo.GetRole(context.Background(), approver.ID+100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
