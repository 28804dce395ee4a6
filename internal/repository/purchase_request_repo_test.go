package repository_test

import (
	"context"
	"testing"
	"time"

	"buyinbuyout/internal/model"
	"buyinbuyout/internal/repository"
	"buyinbuyout/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseRequestRepository_ListByOwnerNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewPurchaseRequestRepository(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice", model.RoleMember)
	bob := testutil.SeedUser(t, db, "bob", model.RoleMember)

	first := testutil.SeedRequest(t, db, alice.ID, "chair", model.StatusDraft)
	second := testutil.SeedRequest(t, db, alice.ID, "desk", model.StatusDraft)
	testutil.SeedRequest(t, db, bob.ID, "lamp", model.StatusDraft)

	// Pin timestamps so ordering does not depend on clock resolution
	require.NoError(t, db.Model(&first).Update("created_at", time.Now().Add(-time.Hour)).Error)

	got, err := repo.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}

func TestPurchaseRequestRepository_FindOwnedScopesByOwner(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewPurchaseRequestRepository(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice", model.RoleMember)
	bob := testutil.SeedUser(t, db, "bob", model.RoleMember)
	pr := testutil.SeedRequest(t, db, alice.ID, "laptop", model.StatusDraft)

	found, err := repo.FindOwned(ctx, pr.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "laptop", found.Name)

	_, err = repo.FindOwned(ctx, pr.ID, bob.ID)
	assert.Error(t, err)
}

func TestPurchaseRequestRepository_UpdateOwnedReportsMatches(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewPurchaseRequestRepository(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice", model.RoleMember)
	bob := testutil.SeedUser(t, db, "bob", model.RoleMember)
	pr := testutil.SeedRequest(t, db, alice.ID, "laptop", model.StatusDraft)

	n, err := repo.UpdateOwned(ctx, pr.ID, bob.ID, map[string]interface{}{"name": "stolen"})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.UpdateOwned(ctx, pr.ID, alice.ID, map[string]interface{}{"name": "laptop pro"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	reloaded, err := repo.FindByID(ctx, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, "laptop pro", reloaded.Name)
	assert.Equal(t, alice.ID, reloaded.UserID)
}

func TestPurchaseRequestRepository_CountByStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewPurchaseRequestRepository(db)

	owner := testutil.SeedUser(t, db, "owner", model.RoleMember)
	testutil.SeedRequest(t, db, owner.ID, "a", model.StatusDraft)
	testutil.SeedRequest(t, db, owner.ID, "b", model.StatusDraft)
	testutil.SeedRequest(t, db, owner.ID, "c", model.StatusApproved)

	rows, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)

	counts := map[model.RequestStatus]int64{}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	assert.Equal(t, map[model.RequestStatus]int64{
		model.StatusDraft:    2,
		model.StatusApproved: 1,
	}, counts)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	db := testutil.NewDB(t)
	tx := repository.NewTransactionManager(db)
	repo := repository.NewPurchaseRequestRepository(db)
	history := repository.NewApprovalHistoryRepository(db)

	owner := testutil.SeedUser(t, db, "owner", model.RoleMember)
	pr := testutil.SeedRequest(t, db, owner.ID, "a", model.StatusSubmitted)

	err := tx.RunInTx(context.Background(), func(txCtx context.Context) error {
		if err := repo.UpdateStatus(txCtx, pr.ID, model.StatusApproved); err != nil {
			return err
		}
		if err := history.Append(txCtx, &model.ApprovalHistory{PurchaseRequestID: pr.ID, Change: model.ChangeApproved}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	reloaded, err := repo.FindByID(context.Background(), pr.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, reloaded.Status)

	entries, total, err := history.ListByRequest(context.Background(), pr.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, entries)
}
