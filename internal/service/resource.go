package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/repository"
	"github.com/rs/zerolog"
)

type resourceService struct {
	resources repository.ResourceRepository
	tx        repository.TxManager
	log       zerolog.Logger
	newID     func() string
}

func NewResourceService(resources repository.ResourceRepository, tx repository.TxManager, logger zerolog.Logger) ResourceService {
	l := logger.With().Str("module", "service").Str("component", "resource").Logger()
	return &resourceService{resources: resources, tx: tx, log: l, newID: uuid.NewString}
}

// prepare normalizes a resource and fills generated identifiers.
func (s *resourceService) prepare(r model.Resource) model.Resource {
	r.ResourceID = strings.TrimSpace(r.ResourceID)
	r.ResourceName = strings.TrimSpace(r.ResourceName)
	r.ResourceDesc = strings.TrimSpace(r.ResourceDesc)
	r.OrganID = strings.TrimSpace(r.OrganID)
	r.GlobalID = strings.TrimSpace(r.GlobalID)
	r.Tags = normalizeTags(r.Tags)
	if r.ResourceID == "" {
		r.ResourceID = s.newID()
	}
	if r.GlobalID == "" && r.OrganID != "" {
		r.GlobalID = r.OrganID + "-" + r.ResourceID
	}
	return r
}

func (s *resourceService) SaveResource(ctx context.Context, r model.Resource) (model.Resource, error) {
	start := time.Now()
	r = s.prepare(r)

	if err := NewInvalidInputError(validateResource("", r)); err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Str("resource_id", r.ResourceID).Msg("resource validation failed")
		return model.Resource{}, err
	}

	out, err := s.resources.Upsert(ctx, r)
	if err != nil {
		// Repository surfaces domain-level errors already, do not wrap.
		s.log.Error().Err(err).Str("resource_id", r.ResourceID).Str("organ_id", r.OrganID).Msg("save resource failed")
		return model.Resource{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Str("resource_id", out.ResourceID).Msg("resource saved")
	return out, nil
}

func (s *resourceService) BatchSaveResources(ctx context.Context, items []model.Resource) ([]model.Resource, error) {
	if len(items) == 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "items", Message: "must not be empty"}})
	}
	if len(items) > maxBatchLen {
		return nil, NewInvalidInputError([]FieldError{{Field: "items", Message: "at most 500 items per batch"}})
	}

	prepared := make([]model.Resource, len(items))
	seen := make(map[string]int, len(items))
	var ferrs []FieldError
	for i, it := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		prepared[i] = s.prepare(it)
		ferrs = append(ferrs, validateResource(prefix, prepared[i])...)
		if j, dup := seen[prepared[i].ResourceID]; dup {
			ferrs = append(ferrs, FieldError{Field: prefix + "resourceId", Message: fmt.Sprintf("duplicates items[%d]", j)})
		} else {
			seen[prepared[i].ResourceID] = i
		}
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Int("items", len(items)).Interface("field_errors", ferrs).Msg("batch validation failed")
		return nil, err
	}

	out := make([]model.Resource, 0, len(prepared))
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, r := range prepared {
			saved, err := s.resources.Upsert(ctx, r)
			if err != nil {
				return err
			}
			out = append(out, saved)
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Int("items", len(items)).Msg("batch save failed")
		return nil, err
	}
	s.log.Info().Int("items", len(out)).Msg("resource batch saved")
	return out, nil
}

func (s *resourceService) GetResource(ctx context.Context, resourceID string) (model.Resource, error) {
	resourceID = strings.TrimSpace(resourceID)
	if resourceID == "" {
		return model.Resource{}, NewInvalidInputError([]FieldError{{Field: "resourceId", Message: "must not be empty"}})
	}
	return s.resources.GetByResourceID(ctx, resourceID)
}

func (s *resourceService) ListResources(ctx context.Context, param model.ResourceParam) (repository.PageResult[model.Resource], error) {
	if err := NewInvalidInputError(validateResourceParam(param)); err != nil {
		return repository.PageResult[model.Resource]{}, err
	}
	p := normalizeResourceParam(param)
	res, err := s.resources.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Bool("filtered", p.IsFiltered()).Int("page_no", p.PageNo).Int("page_size", p.PageSize).Msg("list resources failed")
		return repository.PageResult[model.Resource]{}, err
	}
	s.log.Debug().
		Bool("filtered", p.IsFiltered()).
		Int("groups", len(p.GroupList)).
		Int("page_no", p.PageNo).
		Int("page_size", p.PageSize).
		Int("total", res.Total).
		Msg("resources listed")
	return res, nil
}

func (s *resourceService) DeleteResource(ctx context.Context, resourceID string) error {
	resourceID = strings.TrimSpace(resourceID)
	if resourceID == "" {
		return NewInvalidInputError([]FieldError{{Field: "resourceId", Message: "must not be empty"}})
	}
	if err := s.resources.Delete(ctx, resourceID); err != nil {
		return err
	}
	s.log.Info().Str("resource_id", resourceID).Msg("resource deleted")
	return nil
}
