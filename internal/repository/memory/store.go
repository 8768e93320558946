// Package memory is an in-process repository backend with the same semantics as
// the postgres one. It backs tests and the "memory" storage driver.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/repository"
)

// Store owns all tables. The repositories it hands out share its lock.
type Store struct {
	mu sync.RWMutex
	st state

	now func() time.Time
}

type state struct {
	resources      map[string]model.Resource // by ResourceID
	nextResourceID int64
	groups         map[int64]model.Group
	nextGroupID    int64
	members        map[int64]map[string]model.GroupOrgan
}

func NewStore() *Store {
	return &Store{
		st: state{
			resources: map[string]model.Resource{},
			groups:    map[int64]model.Group{},
			members:   map[int64]map[string]model.GroupOrgan{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Resources() repository.ResourceRepository { return &resourceRepository{s: s} }
func (s *Store) Groups() repository.GroupRepository       { return &groupRepository{s: s} }
func (s *Store) TxManager() repository.TxManager           { return &txManager{s: s} }

// Ping only reports context cancellation; there is nothing remote to reach.
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// Reset drops every row. Used between contract cases.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = NewStore().st
}

func (st state) clone() state {
	out := state{
		resources:      maps.Clone(st.resources),
		nextResourceID: st.nextResourceID,
		groups:         maps.Clone(st.groups),
		nextGroupID:    st.nextGroupID,
		members:        make(map[int64]map[string]model.GroupOrgan, len(st.members)),
	}
	for id, m := range st.members {
		out.members[id] = maps.Clone(m)
	}
	return out
}

func cloneResource(r model.Resource) model.Resource {
	r.Tags = slices.Clone(r.Tags)
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r
}

// txKey marks a context that runs inside a transaction of the Store it holds.
type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock takes the write lock unless ctx already runs inside a transaction on s,
// which holds it for its whole duration. Callers defer the returned func.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) rlock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

type txManager struct{ s *Store }

// WithinTx holds the store's write lock until fn returns, so transactions are
// serialized with every other access and a rollback only undoes fn's own writes.
// fn must use the ctx it is given; calls on an outer ctx block until it returns.
func (m *txManager) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if m.s.inTx(ctx) {
		return fn(ctx)
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	snapshot := m.s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, m.s)); err != nil {
		m.s.st = snapshot
		return err
	}
	return nil
}

var _ repository.TxManager = (*txManager)(nil)
var _ repository.Pinger = (*Store)(nil)
