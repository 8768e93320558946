// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"

	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error, or nil when fe is empty.
// Handlers use it for binding failures so every 400 has the same shape.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// ResourceService defines resource registry use cases.
type ResourceService interface {
	SaveResource(ctx context.Context, r model.Resource) (model.Resource, error)
	// BatchSaveResources validates every item first and persists all of them in one transaction.
	BatchSaveResources(ctx context.Context, items []model.Resource) ([]model.Resource, error)
	GetResource(ctx context.Context, resourceID string) (model.Resource, error)
	ListResources(ctx context.Context, param model.ResourceParam) (repository.PageResult[model.Resource], error)
	DeleteResource(ctx context.Context, resourceID string) error
}

// GroupService defines organ group use cases.
type GroupService interface {
	CreateGroup(ctx context.Context, name string) (model.Group, error)
	ListGroups(ctx context.Context, page model.PageParam) (repository.PageResult[model.Group], error)
	JoinGroup(ctx context.Context, groupID int64, organID string) (model.GroupOrgan, error)
	ListGroupOrgans(ctx context.Context, groupID int64) ([]model.GroupOrgan, error)
}
