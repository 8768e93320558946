// Package contract holds behavior suites every repository backend must pass.
// Backends wire their own factories; the suites only speak the repository interfaces.
package contract

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/repository"
)

type ResourceFactory func(t *testing.T) (repo repository.ResourceRepository, groups repository.GroupRepository, cleanup func())

type GroupFactory func(t *testing.T) (repository.GroupRepository, func())

type TxFactory func(t *testing.T) (tx repository.TxManager, resources repository.ResourceRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func newResource(id, name, organ string, typ int, tags ...string) model.Resource {
	return model.Resource{
		ResourceID:   id,
		ResourceName: name,
		ResourceType: typ,
		OrganID:      organ,
		GlobalID:     organ + "-" + id,
		Tags:         tags,
	}
}

func resourceIDs(items []model.Resource) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ResourceID)
	}
	return out
}

func equalIDs(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func RunResourceRepositoryContract(t *testing.T, makeRepo ResourceFactory) {
	t.Helper()

	t.Run("upsert_and_get", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Upsert(ctx, newResource("r-1", "Sales 2024", "organ-a", 1, "finance", "q4"))
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if created.ID == 0 || created.CreatedAt.IsZero() {
			t.Fatalf("expected generated id and timestamps: %+v", created)
		}
		got, err := repo.GetByResourceID(ctx, "r-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != created.ID || got.ResourceName != "Sales 2024" || got.GlobalID != "organ-a-r-1" {
			t.Fatalf("mismatch: %+v", got)
		}
		if !equalIDs(got.Tags, "finance", "q4") {
			t.Fatalf("tags mismatch: %v", got.Tags)
		}
	})

	t.Run("upsert_replaces_existing", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		first, err := repo.Upsert(ctx, newResource("r-1", "old", "organ-a", 1))
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		second, err := repo.Upsert(ctx, newResource("r-1", "new", "organ-a", 2, "fresh"))
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if second.ID != first.ID || second.ResourceName != "new" || second.ResourceType != 2 {
			t.Fatalf("upsert didn't replace: %+v", second)
		}
		if !equalIDs(second.Tags, "fresh") {
			t.Fatalf("tags not replaced: %v", second.Tags)
		}
	})

	t.Run("nil_tags_read_back_empty", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		out, err := repo.Upsert(context.Background(), newResource("r-1", "n", "organ-a", 0))
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if len(out.Tags) != 0 {
			t.Fatalf("expected no tags, got %v", out.Tags)
		}
	})

	t.Run("global_id_taken", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Upsert(ctx, newResource("r-1", "a", "organ-a", 0)); err != nil {
			t.Fatalf("seed: %v", err)
		}
		dup := newResource("r-2", "b", "organ-a", 0)
		dup.GlobalID = "organ-a-r-1"
		_, err := repo.Upsert(ctx, dup)
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("negative_type_conflict", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Upsert(context.Background(), newResource("r-1", "a", "organ-a", -1))
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByResourceID(context.Background(), "missing")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Upsert(ctx, newResource("r-1", "a", "organ-a", 0)); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if err := repo.Delete(ctx, "r-1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.GetByResourceID(ctx, "r-1"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete(ctx, "r-1"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("list_filters", func(t *testing.T) {
		repo, groups, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seed := []model.Resource{
			newResource("r-1", "Sales Ledger", "organ-a", 1, "Finance", "ledger"),
			newResource("r-2", "Patient Visits", "organ-b", 2, "health"),
			newResource("r-3", "sales_forecast", "organ-a", 2, "finance-model"),
			newResource("r-4", "Ledger 100%", "organ-c", 1),
			newResource("r-5", "Inventory", "organ-b", 1, "ops"),
		}
		for _, r := range seed {
			if _, err := repo.Upsert(ctx, r); err != nil {
				t.Fatalf("seed %s: %v", r.ResourceID, err)
			}
		}
		g1, err := groups.Create(ctx, model.Group{Name: "g1"})
		if err != nil {
			t.Fatalf("seed group: %v", err)
		}
		g2, err := groups.Create(ctx, model.Group{Name: "g2"})
		if err != nil {
			t.Fatalf("seed group: %v", err)
		}
		g3, err := groups.Create(ctx, model.Group{Name: "g3"})
		if err != nil {
			t.Fatalf("seed group: %v", err)
		}
		if _, err := groups.AddOrgan(ctx, g1.ID, "organ-a"); err != nil {
			t.Fatalf("join: %v", err)
		}
		if _, err := groups.AddOrgan(ctx, g2.ID, "organ-c"); err != nil {
			t.Fatalf("join: %v", err)
		}

		cases := []struct {
			name  string
			param model.ResourceParam
			want  []string
		}{
			{"no filter newest first", model.ResourceParam{}, []string{"r-5", "r-4", "r-3", "r-2", "r-1"}},
			{"resource id exact", model.ResourceParam{ResourceID: model.Ptr("r-2")}, []string{"r-2"}},
			{"resource id is not a substring match", model.ResourceParam{ResourceID: model.Ptr("r-")}, []string{}},
			{"name substring case-insensitive", model.ResourceParam{ResourceName: model.Ptr("SALES")}, []string{"r-3", "r-1"}},
			{"name wildcards literal", model.ResourceParam{ResourceName: model.Ptr("100%")}, []string{"r-4"}},
			{"name underscore literal", model.ResourceParam{ResourceName: model.Ptr("s_f")}, []string{"r-3"}},
			{"type", model.ResourceParam{ResourceType: model.Ptr(2)}, []string{"r-3", "r-2"}},
			{"type zero is a real filter", model.ResourceParam{ResourceType: model.Ptr(0)}, []string{}},
			{"organ", model.ResourceParam{OrganID: model.Ptr("organ-b")}, []string{"r-5", "r-2"}},
			{"tag substring any tag", model.ResourceParam{TagName: model.Ptr("finance")}, []string{"r-3", "r-1"}},
			{"tag case-insensitive", model.ResourceParam{TagName: model.Ptr("LEDGER")}, []string{"r-1"}},
			{"global id", model.ResourceParam{GlobalID: model.Ptr("organ-c-r-4")}, []string{"r-4"}},
			{"group single", model.ResourceParam{GroupList: []int64{g1.ID}}, []string{"r-3", "r-1"}},
			{"group any-of", model.ResourceParam{GroupList: []int64{g2.ID, g1.ID}}, []string{"r-4", "r-3", "r-1"}},
			{"group without organs", model.ResourceParam{GroupList: []int64{g3.ID}}, []string{}},
			{"empty group list ignored", model.ResourceParam{GroupList: []int64{}}, []string{"r-5", "r-4", "r-3", "r-2", "r-1"}},
			{"combined and", model.ResourceParam{OrganID: model.Ptr("organ-a"), ResourceType: model.Ptr(1)}, []string{"r-1"}},
			{"combined with group", model.ResourceParam{GroupList: []int64{g1.ID, g2.ID}, TagName: model.Ptr("fin")}, []string{"r-3", "r-1"}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				res, err := repo.List(ctx, tc.param)
				if err != nil {
					t.Fatalf("list: %v", err)
				}
				got := resourceIDs(res.Items)
				if !equalIDs(got, tc.want...) {
					t.Fatalf("unexpected ids: got %v want %v", got, tc.want)
				}
				if res.Total != len(tc.want) {
					t.Fatalf("unexpected total: got %d want %d", res.Total, len(tc.want))
				}
			})
		}
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 1; i <= 7; i++ {
			id := fmt.Sprintf("r-%d", i)
			if _, err := repo.Upsert(ctx, newResource(id, "n", "organ-a", 0)); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		page := func(no, size int) repository.PageResult[model.Resource] {
			res, err := repo.List(ctx, model.ResourceParam{PageParam: model.PageParam{PageNo: no, PageSize: size}})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			return res
		}
		p1 := page(1, 3)
		if !equalIDs(resourceIDs(p1.Items), "r-7", "r-6", "r-5") || p1.Total != 7 {
			t.Fatalf("unexpected page1: %v total=%d", resourceIDs(p1.Items), p1.Total)
		}
		p3 := page(3, 3)
		if !equalIDs(resourceIDs(p3.Items), "r-1") || p3.Total != 7 {
			t.Fatalf("unexpected page3: %v total=%d", resourceIDs(p3.Items), p3.Total)
		}
		past := page(9, 3)
		if len(past.Items) != 0 || past.Total != 7 {
			t.Fatalf("unexpected page past end: len=%d total=%d", len(past.Items), past.Total)
		}
		def := page(0, 0)
		if len(def.Items) != 7 {
			t.Fatalf("default page should hold all 7, got %d", len(def.Items))
		}
		huge := page(math.MaxInt, 10)
		if len(huge.Items) != 0 || huge.Total != 7 {
			t.Fatalf("unexpected huge page: len=%d total=%d", len(huge.Items), huge.Total)
		}
	})

	t.Run("wide_resource_type", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		const wide = math.MaxInt32 + 1
		if _, err := repo.Upsert(ctx, newResource("r-wide", "n", "organ-a", wide)); err != nil {
			t.Fatalf("upsert type %d: %v", wide, err)
		}
		if _, err := repo.Upsert(ctx, newResource("r-small", "n", "organ-a", 1)); err != nil {
			t.Fatalf("seed: %v", err)
		}
		got, err := repo.GetByResourceID(ctx, "r-wide")
		if err != nil || got.ResourceType != wide {
			t.Fatalf("read back type: got %d err=%v", got.ResourceType, err)
		}
		for _, tc := range []struct {
			typ  int
			want []string
		}{
			{wide, []string{"r-wide"}},
			{wide * 2, []string{}},
		} {
			res, err := repo.List(ctx, model.ResourceParam{ResourceType: model.Ptr(tc.typ)})
			if err != nil {
				t.Fatalf("list type %d: %v", tc.typ, err)
			}
			if ids := resourceIDs(res.Items); !equalIDs(ids, tc.want...) || res.Total != len(tc.want) {
				t.Fatalf("type %d: got %v total=%d want %v", tc.typ, ids, res.Total, tc.want)
			}
		}
	})
}

func RunGroupRepositoryContract(t *testing.T, makeRepo GroupFactory) {
	t.Helper()

	t.Run("create_get_exists", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g, err := repo.Create(ctx, model.Group{Name: "hospitals"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		got, err := repo.GetByID(ctx, g.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != g.ID || got.Name != "hospitals" {
			t.Fatalf("mismatch: %+v", got)
		}
		ok, err := repo.Exists(ctx, g.ID)
		if err != nil || !ok {
			t.Fatalf("expected exists, got %v %v", ok, err)
		}
		ok, err = repo.Exists(ctx, g.ID+1000)
		if err != nil || ok {
			t.Fatalf("expected not exists, got %v %v", ok, err)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 987654)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Create(ctx, model.Group{Name: "dup"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		_, err := repo.Create(ctx, model.Group{Name: "dup"})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			if _, err := repo.Create(ctx, model.Group{Name: fmt.Sprintf("g-%d", i)}); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		res, err := repo.List(ctx, model.PageParam{PageNo: 2, PageSize: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 2 || res.Total != 5 || res.Items[0].Name != "g-2" {
			t.Fatalf("unexpected page: %+v", res)
		}
	})

	t.Run("add_organ_idempotent", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g, err := repo.Create(ctx, model.Group{Name: "g"})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		first, err := repo.AddOrgan(ctx, g.ID, "organ-a")
		if err != nil {
			t.Fatalf("join: %v", err)
		}
		again, err := repo.AddOrgan(ctx, g.ID, "organ-a")
		if err != nil {
			t.Fatalf("join again: %v", err)
		}
		if !again.JoinedAt.Equal(first.JoinedAt) {
			t.Fatalf("rejoin changed membership: %v vs %v", again.JoinedAt, first.JoinedAt)
		}
		if _, err := repo.AddOrgan(ctx, g.ID, "organ-b"); err != nil {
			t.Fatalf("join b: %v", err)
		}
		organs, err := repo.ListOrgans(ctx, g.ID)
		if err != nil {
			t.Fatalf("list organs: %v", err)
		}
		if len(organs) != 2 {
			t.Fatalf("expected 2 organs, got %+v", organs)
		}
	})

	t.Run("add_organ_missing_group", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.AddOrgan(context.Background(), 424242, "organ-a")
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("list_organs_empty", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g, err := repo.Create(ctx, model.Group{Name: "lonely"})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		organs, err := repo.ListOrgans(ctx, g.ID)
		if err != nil || len(organs) != 0 {
			t.Fatalf("expected empty list, got %v %v", organs, err)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, resources, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			_, err := resources.Upsert(ctx, newResource("tx-commit", "n", "organ-a", 0))
			return err
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := resources.GetByResourceID(ctx, "tx-commit"); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, resources, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		marker := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := resources.Upsert(ctx, newResource("tx-rollback", "n", "organ-a", 0)); err != nil {
				return err
			}
			return marker
		})
		if !errors.Is(err, marker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := resources.GetByResourceID(ctx, "tx-rollback"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})

	t.Run("rollback_keeps_independent_writes", func(t *testing.T) {
		tx, resources, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		marker := errors.New("boom")
		done := make(chan error, 1)
		err := tx.WithinTx(ctx, func(txCtx context.Context) error {
			if _, err := resources.Upsert(txCtx, newResource("tx-own", "n", "organ-a", 0)); err != nil {
				return err
			}
			// written on the outer ctx from another goroutine: not part of this transaction
			go func() {
				_, err := resources.Upsert(ctx, newResource("independent", "n", "organ-b", 0))
				done <- err
			}()
			select {
			case err := <-done:
				done <- err
			case <-time.After(50 * time.Millisecond):
				// backends that serialize transactions finish the write after rollback
			}
			return marker
		})
		if !errors.Is(err, marker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if err := <-done; err != nil {
			t.Fatalf("independent upsert: %v", err)
		}
		if _, err := resources.GetByResourceID(ctx, "independent"); err != nil {
			t.Fatalf("independent write lost after rollback: %v", err)
		}
		if _, err := resources.GetByResourceID(ctx, "tx-own"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for rolled back row, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
