package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/repository"
)

type groupRepository struct{ pool *pgxpool.Pool }

func NewGroupRepository(pool *pgxpool.Pool) repository.GroupRepository {
	return &groupRepository{pool: pool}
}

func (r *groupRepository) Create(ctx context.Context, g model.Group) (model.Group, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Group{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO organ_groups (name) VALUES ($1) RETURNING id, name, created_at`, g.Name,
	)
	var out model.Group
	if err := row.Scan(&out.ID, &out.Name, &out.CreatedAt); err != nil {
		return model.Group{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *groupRepository) GetByID(ctx context.Context, id int64) (model.Group, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Group{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT id, name, created_at FROM organ_groups WHERE id = $1`, id)
	var out model.Group
	if err := row.Scan(&out.ID, &out.Name, &out.CreatedAt); err != nil {
		return model.Group{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *groupRepository) List(ctx context.Context, p model.PageParam) (repository.PageResult[model.Group], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Group]{}, err
	}
	limit, offset := p.Limit(), p.Offset()
	if offset < 0 {
		return repository.PageResult[model.Group]{}, repository.ErrInvalidPage
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT id, name, created_at, COUNT(*) OVER() AS total
		 FROM organ_groups
		 ORDER BY id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Group]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Group]{Items: make([]model.Group, 0, limit)}
	for rows.Next() {
		var g model.Group
		var total int
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &total); err != nil {
			return repository.PageResult[model.Group]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, g)
		res.Total = total
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.Group]{}, repository.MapPgError(err)
	}
	if len(res.Items) == 0 && offset > 0 {
		// window count is lost past the last page
		if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM organ_groups`).Scan(&res.Total); err != nil {
			return repository.PageResult[model.Group]{}, repository.MapPgError(err)
		}
	}
	return res, nil
}

// Exists performs a lightweight check to see if a group with the given ID exists.
func (r *groupRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if err := ensurePool(r.pool); err != nil {
		return false, err
	}
	var exists bool
	exec := getQ(ctx, r.pool)
	if err := exec.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM organ_groups WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, repository.MapPgError(err)
	}
	return exists, nil
}

// AddOrgan inserts the membership or returns the existing row untouched.
// Both CTE branches read the pre-statement snapshot, so exactly one yields a row.
func (r *groupRepository) AddOrgan(ctx context.Context, groupID int64, organID string) (model.GroupOrgan, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.GroupOrgan{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`WITH ins AS (
			INSERT INTO group_organs (group_id, organ_id) VALUES ($1, $2)
			ON CONFLICT (group_id, organ_id) DO NOTHING
			RETURNING group_id, organ_id, joined_at
		)
		SELECT group_id, organ_id, joined_at FROM ins
		UNION ALL
		SELECT group_id, organ_id, joined_at FROM group_organs WHERE group_id = $1 AND organ_id = $2
		LIMIT 1`,
		groupID, organID,
	)
	var out model.GroupOrgan
	if err := row.Scan(&out.GroupID, &out.OrganID, &out.JoinedAt); err != nil {
		return model.GroupOrgan{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *groupRepository) ListOrgans(ctx context.Context, groupID int64) ([]model.GroupOrgan, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT group_id, organ_id, joined_at FROM group_organs
		 WHERE group_id = $1 ORDER BY joined_at, organ_id`, groupID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.GroupOrgan, 0, 8)
	for rows.Next() {
		var it model.GroupOrgan
		if err := rows.Scan(&it.GroupID, &it.OrganID, &it.JoinedAt); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	return res, nil
}

var _ repository.GroupRepository = (*groupRepository)(nil)
