package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/deenkids/deenkids-backend/internal/data/repos/testutil"
	types "github.com/deenkids/deenkids-backend/internal/domain"
)

func TestAccessRequestResolveIsGuarded(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := NewAccessRequestRepo(gdb, log)
	actorID := uuid.New()
	resolverID := uuid.New()

	req := &types.AccessRequest{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		ActorID:   actorID,
		Status:    types.RequestPending,
	}
	if _, err := repo.Create(ctx, tx, []*types.AccessRequest{req}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Resolve(ctx, tx, req.ID, types.RequestApproved, resolverID); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{req.ID})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := rows[0]
	if got.Status != types.RequestApproved || got.ResolvedBy == nil || *got.ResolvedBy != resolverID {
		t.Fatalf("resolution not recorded: %+v", got)
	}

	// A second resolve hits the status=pending guard and changes nothing.
	if err := repo.Resolve(ctx, tx, req.ID, types.RequestRejected, uuid.New()); err != nil {
		t.Fatalf("re-resolve: %v", err)
	}
	rows, err = repo.GetByIDs(ctx, tx, []uuid.UUID{req.ID})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if rows[0].Status != types.RequestApproved {
		t.Fatalf("resolved request was overwritten: %s", rows[0].Status)
	}
}

func TestGetPendingByActor(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := NewAccessRequestRepo(gdb, log)
	actorID := uuid.New()

	if got, err := repo.GetPendingByActor(ctx, tx, actorID); err != nil || got != nil {
		t.Fatalf("expected no pending request, got (%v, %v)", got, err)
	}

	req := &types.AccessRequest{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		ActorID:   actorID,
		Status:    types.RequestPending,
	}
	if _, err := repo.Create(ctx, tx, []*types.AccessRequest{req}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetPendingByActor(ctx, tx, actorID)
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if got == nil || got.ID != req.ID {
		t.Fatalf("pending = %v, want %s", got, req.ID)
	}
}
