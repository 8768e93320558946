package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/repository"
)

type resourceRepository struct{ s *Store }

func (r *resourceRepository) Upsert(ctx context.Context, res model.Resource) (model.Resource, error) {
	if err := ctx.Err(); err != nil {
		return model.Resource{}, err
	}
	if res.ResourceType < 0 {
		return model.Resource{}, repository.ErrConflict
	}
	defer r.s.lock(ctx)()

	for _, other := range r.s.st.resources {
		if other.GlobalID == res.GlobalID && other.ResourceID != res.ResourceID {
			return model.Resource{}, repository.ErrAlreadyExists
		}
	}

	now := r.s.now()
	out := cloneResource(res)
	if existing, ok := r.s.st.resources[res.ResourceID]; ok {
		out.ID = existing.ID
		out.CreatedAt = existing.CreatedAt
	} else {
		r.s.st.nextResourceID++
		out.ID = r.s.st.nextResourceID
		out.CreatedAt = now
	}
	out.UpdatedAt = now
	r.s.st.resources[out.ResourceID] = out
	return cloneResource(out), nil
}

func (r *resourceRepository) GetByResourceID(ctx context.Context, resourceID string) (model.Resource, error) {
	if err := ctx.Err(); err != nil {
		return model.Resource{}, err
	}
	defer r.s.rlock(ctx)()
	res, ok := r.s.st.resources[resourceID]
	if !ok {
		return model.Resource{}, repository.ErrNotFound
	}
	return cloneResource(res), nil
}

func (r *resourceRepository) List(ctx context.Context, p model.ResourceParam) (repository.PageResult[model.Resource], error) {
	if err := ctx.Err(); err != nil {
		return repository.PageResult[model.Resource]{}, err
	}
	defer r.s.rlock(ctx)()

	organs := r.s.organsInGroups(p.GroupList)
	var matched []model.Resource
	for _, res := range r.s.st.resources {
		if matches(res, p, organs) {
			matched = append(matched, res)
		}
	}
	slices.SortFunc(matched, func(a, b model.Resource) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})

	limit, offset := p.Limit(), p.Offset()
	if offset < 0 {
		return repository.PageResult[model.Resource]{}, repository.ErrInvalidPage
	}
	out := repository.PageResult[model.Resource]{Items: make([]model.Resource, 0, limit), Total: len(matched)}
	if offset >= len(matched) {
		return out, nil
	}
	end := min(offset+limit, len(matched))
	for _, res := range matched[offset:end] {
		out.Items = append(out.Items, cloneResource(res))
	}
	return out, nil
}

func (r *resourceRepository) Delete(ctx context.Context, resourceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.resources[resourceID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.st.resources, resourceID)
	return nil
}

// organsInGroups returns the organs belonging to any listed group, or nil when no group filter applies.
// Callers hold the read lock.
func (s *Store) organsInGroups(groups []int64) map[string]struct{} {
	if len(groups) == 0 {
		return nil
	}
	out := map[string]struct{}{}
	for _, id := range groups {
		for organ := range s.st.members[id] {
			out[organ] = struct{}{}
		}
	}
	return out
}

func matches(res model.Resource, p model.ResourceParam, organs map[string]struct{}) bool {
	if p.ResourceID != nil && res.ResourceID != *p.ResourceID {
		return false
	}
	if p.ResourceName != nil && !containsFold(res.ResourceName, *p.ResourceName) {
		return false
	}
	if p.ResourceType != nil && res.ResourceType != *p.ResourceType {
		return false
	}
	if p.OrganID != nil && res.OrganID != *p.OrganID {
		return false
	}
	if p.TagName != nil && !slices.ContainsFunc(res.Tags, func(tag string) bool { return containsFold(tag, *p.TagName) }) {
		return false
	}
	if p.GlobalID != nil && res.GlobalID != *p.GlobalID {
		return false
	}
	if organs != nil {
		if _, ok := organs[res.OrganID]; !ok {
			return false
		}
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

var _ repository.ResourceRepository = (*resourceRepository)(nil)
