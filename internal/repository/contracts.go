package repository

import (
	"context"

	"github.com/maxviazov/fusion-resource-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// ResourceRepository declares persistence and lookup operations for resources.
// I return domain models and surface domain errors from errors.go rather than PG codes.
type ResourceRepository interface {
	// Upsert inserts a resource or, when its ResourceID is already known, replaces its mutable fields.
	Upsert(ctx context.Context, r model.Resource) (model.Resource, error)
	GetByResourceID(ctx context.Context, resourceID string) (model.Resource, error)
	// List applies every set dimension of the filter (AND-ed together) and pages the result.
	// Name and tag filters are case-insensitive substring matches, group list is any-of
	// over the groups the owning organ belongs to, everything else is exact.
	List(ctx context.Context, f model.ResourceParam) (PageResult[model.Resource], error)
	Delete(ctx context.Context, resourceID string) error
}

// GroupRepository declares persistence operations for organ groups.
type GroupRepository interface {
	Create(ctx context.Context, g model.Group) (model.Group, error)
	GetByID(ctx context.Context, id int64) (model.Group, error)
	List(ctx context.Context, p model.PageParam) (PageResult[model.Group], error)
	Exists(ctx context.Context, id int64) (bool, error)
	// AddOrgan is idempotent: joining twice keeps the original membership.
	AddOrgan(ctx context.Context, groupID int64, organID string) (model.GroupOrgan, error)
	ListOrgans(ctx context.Context, groupID int64) ([]model.GroupOrgan, error)
}
