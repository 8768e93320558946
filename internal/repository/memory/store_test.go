package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	tags := []string{"a"}
	out, err := s.Resources().Upsert(ctx, model.Resource{ResourceID: "r", GlobalID: "g", Tags: tags})
	require.NoError(t, err)

	tags[0] = "mutated"
	out.Tags[0] = "mutated too"

	got, err := s.Resources().GetByResourceID(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.Tags)
}

func TestStore_CanceledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Resources().List(ctx, model.ResourceParam{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}

func TestStore_NestedTxJoinsOuter(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	tx := s.TxManager()

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.Resources().Upsert(ctx, model.Resource{ResourceID: "outer", GlobalID: "g1"}); err != nil {
			return err
		}
		return tx.WithinTx(ctx, func(ctx context.Context) error {
			_, err := s.Resources().Upsert(ctx, model.Resource{ResourceID: "inner", GlobalID: "g2"})
			return err
		})
	})
	require.NoError(t, err)

	res, err := s.Resources().List(ctx, model.ResourceParam{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
}

func TestStore_RollbackKeepsWritesOutsideTx(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	marker := errors.New("boom")

	_, err := s.Resources().Upsert(ctx, model.Resource{ResourceID: "before", GlobalID: "g0"})
	require.NoError(t, err)

	done := make(chan error, 1)
	err = s.TxManager().WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := s.Resources().Upsert(txCtx, model.Resource{ResourceID: "in-tx", GlobalID: "g1"}); err != nil {
			return err
		}
		go func() {
			_, err := s.Resources().Upsert(ctx, model.Resource{ResourceID: "other", GlobalID: "g2"})
			done <- err
		}()
		select {
		case <-done:
			t.Error("a write outside the transaction must wait for it to finish")
		case <-time.After(20 * time.Millisecond):
		}
		return marker
	})
	require.ErrorIs(t, err, marker)
	require.NoError(t, <-done)

	for _, id := range []string{"before", "other"} {
		_, err := s.Resources().GetByResourceID(ctx, id)
		assert.NoError(t, err, id)
	}
	_, err = s.Resources().GetByResourceID(ctx, "in-tx")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_TxOfAnotherStoreDoesNotSkipLocks(t *testing.T) {
	a, b := NewStore(), NewStore()
	ctx := context.Background()

	err := a.TxManager().WithinTx(ctx, func(ctx context.Context) error {
		// b is not locked by a's transaction, so this must take b's own lock and succeed
		_, err := b.Resources().Upsert(ctx, model.Resource{ResourceID: "x", GlobalID: "g"})
		return err
	})
	require.NoError(t, err)

	_, err = b.Resources().GetByResourceID(ctx, "x")
	assert.NoError(t, err)
}
