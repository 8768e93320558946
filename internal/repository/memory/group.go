package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/repository"
)

type groupRepository struct{ s *Store }

func (r *groupRepository) Create(ctx context.Context, g model.Group) (model.Group, error) {
	if err := ctx.Err(); err != nil {
		return model.Group{}, err
	}
	defer r.s.lock(ctx)()
	for _, other := range r.s.st.groups {
		if other.Name == g.Name {
			return model.Group{}, repository.ErrAlreadyExists
		}
	}
	r.s.st.nextGroupID++
	g.ID = r.s.st.nextGroupID
	g.CreatedAt = r.s.now()
	r.s.st.groups[g.ID] = g
	return g, nil
}

func (r *groupRepository) GetByID(ctx context.Context, id int64) (model.Group, error) {
	if err := ctx.Err(); err != nil {
		return model.Group{}, err
	}
	defer r.s.rlock(ctx)()
	g, ok := r.s.st.groups[id]
	if !ok {
		return model.Group{}, repository.ErrNotFound
	}
	return g, nil
}

func (r *groupRepository) List(ctx context.Context, p model.PageParam) (repository.PageResult[model.Group], error) {
	if err := ctx.Err(); err != nil {
		return repository.PageResult[model.Group]{}, err
	}
	defer r.s.rlock(ctx)()

	all := make([]model.Group, 0, len(r.s.st.groups))
	for _, g := range r.s.st.groups {
		all = append(all, g)
	}
	slices.SortFunc(all, func(a, b model.Group) int { return int(a.ID - b.ID) })

	limit, offset := p.Limit(), p.Offset()
	if offset < 0 {
		return repository.PageResult[model.Group]{}, repository.ErrInvalidPage
	}
	out := repository.PageResult[model.Group]{Items: make([]model.Group, 0, limit), Total: len(all)}
	if offset < len(all) {
		out.Items = append(out.Items, all[offset:min(offset+limit, len(all))]...)
	}
	return out, nil
}

func (r *groupRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	defer r.s.rlock(ctx)()
	_, ok := r.s.st.groups[id]
	return ok, nil
}

func (r *groupRepository) AddOrgan(ctx context.Context, groupID int64, organID string) (model.GroupOrgan, error) {
	if err := ctx.Err(); err != nil {
		return model.GroupOrgan{}, err
	}
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.groups[groupID]; !ok {
		// mirrors the foreign key on group_organs
		return model.GroupOrgan{}, repository.ErrConflict
	}
	m := r.s.st.members[groupID]
	if m == nil {
		m = map[string]model.GroupOrgan{}
		r.s.st.members[groupID] = m
	}
	if existing, ok := m[organID]; ok {
		return existing, nil
	}
	gm := model.GroupOrgan{GroupID: groupID, OrganID: organID, JoinedAt: r.s.now()}
	m[organID] = gm
	return gm, nil
}

func (r *groupRepository) ListOrgans(ctx context.Context, groupID int64) ([]model.GroupOrgan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.s.rlock(ctx)()
	out := make([]model.GroupOrgan, 0, len(r.s.st.members[groupID]))
	for _, gm := range r.s.st.members[groupID] {
		out = append(out, gm)
	}
	slices.SortFunc(out, func(a, b model.GroupOrgan) int {
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		return strings.Compare(a.OrganID, b.OrganID)
	})
	return out, nil
}

var _ repository.GroupRepository = (*groupRepository)(nil)
