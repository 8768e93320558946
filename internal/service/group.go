package service

import (
	"context"
	"errors"
	"strings"

	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/repository"
	"github.com/rs/zerolog"
)

// groupService holds organ group use-case logic: validation + orchestration, no transport / SQL details.
type groupService struct {
	groups repository.GroupRepository
	log    zerolog.Logger
}

func NewGroupService(groups repository.GroupRepository, logger zerolog.Logger) GroupService {
	l := logger.With().Str("module", "service").Str("component", "group").Logger()
	return &groupService{groups: groups, log: l}
}

func (s *groupService) CreateGroup(ctx context.Context, name string) (model.Group, error) {
	original := name
	name = strings.TrimSpace(name)

	var ferrs []FieldError
	if name == "" {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "must not be empty"})
	} else if ln := len([]rune(name)); ln < 2 || ln > 64 {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "length must be between 2 and 64"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Str("name_raw", original).Interface("field_errors", ferrs).Msg("group validation failed")
		return model.Group{}, err
	}

	out, err := s.groups.Create(ctx, model.Group{Name: name})
	if err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("create group failed")
		return model.Group{}, err
	}
	s.log.Info().Int64("group_id", out.ID).Msg("group created")
	return out, nil
}

func (s *groupService) ListGroups(ctx context.Context, page model.PageParam) (repository.PageResult[model.Group], error) {
	p := page.Normalize()
	res, err := s.groups.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("page_no", p.PageNo).Int("page_size", p.PageSize).Msg("list groups failed")
		return repository.PageResult[model.Group]{}, err
	}
	return res, nil
}

func (s *groupService) JoinGroup(ctx context.Context, groupID int64, organID string) (model.GroupOrgan, error) {
	organID = strings.TrimSpace(organID)

	var ferrs []FieldError
	if groupID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "groupId", Message: "must be > 0"})
	}
	if organID == "" {
		ferrs = append(ferrs, FieldError{Field: "organId", Message: "must not be empty"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.GroupOrgan{}, err
	}

	// Existence check gives a clean 404 instead of an FK conflict.
	ok, err := s.groups.Exists(ctx, groupID)
	if err != nil {
		return model.GroupOrgan{}, err
	}
	if !ok {
		return model.GroupOrgan{}, repository.ErrNotFound
	}

	out, err := s.groups.AddOrgan(ctx, groupID, organID)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// group vanished between the check and the insert
			return model.GroupOrgan{}, repository.ErrNotFound
		}
		s.log.Error().Err(err).Int64("group_id", groupID).Str("organ_id", organID).Msg("join group failed")
		return model.GroupOrgan{}, err
	}
	s.log.Info().Int64("group_id", groupID).Str("organ_id", organID).Msg("organ joined group")
	return out, nil
}

func (s *groupService) ListGroupOrgans(ctx context.Context, groupID int64) ([]model.GroupOrgan, error) {
	if groupID <= 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "groupId", Message: "must be > 0"}})
	}
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.groups.ListOrgans(ctx, groupID)
}
