package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/repository"
)

const resourceColumns = `r.id, r.resource_id, r.resource_name, r.resource_type, r.resource_desc,
	r.organ_id, r.global_id, r.tags, r.file_rows, r.file_columns, r.created_at, r.updated_at`

type resourceRepository struct{ pool *pgxpool.Pool }

func NewResourceRepository(pool *pgxpool.Pool) repository.ResourceRepository {
	return &resourceRepository{pool: pool}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResource(row scanner, out *model.Resource) error {
	return row.Scan(&out.ID, &out.ResourceID, &out.ResourceName, &out.ResourceType, &out.ResourceDesc,
		&out.OrganID, &out.GlobalID, &out.Tags, &out.FileRows, &out.FileColumns, &out.CreatedAt, &out.UpdatedAt)
}

func (r *resourceRepository) Upsert(ctx context.Context, res model.Resource) (model.Resource, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Resource{}, err
	}
	tags := res.Tags
	if tags == nil {
		// NOT NULL column; a nil slice would encode as NULL
		tags = []string{}
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO resources AS r (
			resource_id, resource_name, resource_type, resource_desc, organ_id, global_id, tags, file_rows, file_columns
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (resource_id)
		DO UPDATE SET
			resource_name = EXCLUDED.resource_name,
			resource_type = EXCLUDED.resource_type,
			resource_desc = EXCLUDED.resource_desc,
			organ_id = EXCLUDED.organ_id,
			global_id = EXCLUDED.global_id,
			tags = EXCLUDED.tags,
			file_rows = EXCLUDED.file_rows,
			file_columns = EXCLUDED.file_columns,
			updated_at = NOW()
		RETURNING `+resourceColumns,
		res.ResourceID, res.ResourceName, res.ResourceType, res.ResourceDesc, res.OrganID, res.GlobalID,
		tags, res.FileRows, res.FileColumns,
	)
	var out model.Resource
	if err := scanResource(row, &out); err != nil {
		return model.Resource{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *resourceRepository) GetByResourceID(ctx context.Context, resourceID string) (model.Resource, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Resource{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources r WHERE r.resource_id = $1`, resourceID)
	var out model.Resource
	if err := scanResource(row, &out); err != nil {
		return model.Resource{}, repository.MapPgError(err)
	}
	return out, nil
}

// List counts matches separately from the page query so Total stays correct past the last page.
func (r *resourceRepository) List(ctx context.Context, p model.ResourceParam) (repository.PageResult[model.Resource], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Resource]{}, err
	}
	f := resourceFilter(p)
	where := f.where()
	exec := getQ(ctx, r.pool)

	var total int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM resources r `+where, f.args...).Scan(&total); err != nil {
		return repository.PageResult[model.Resource]{}, repository.MapPgError(err)
	}

	limit, offset := p.Limit(), p.Offset()
	if offset < 0 {
		return repository.PageResult[model.Resource]{}, repository.ErrInvalidPage
	}
	res := repository.PageResult[model.Resource]{Items: make([]model.Resource, 0, limit), Total: total}
	if total == 0 || offset >= total {
		return res, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM resources r %s ORDER BY r.id DESC LIMIT %s OFFSET %s`,
		resourceColumns, where, f.next(1), f.next(2))
	args := append(f.args, limit, offset)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return repository.PageResult[model.Resource]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var it model.Resource
		if err := scanResource(rows, &it); err != nil {
			return repository.PageResult[model.Resource]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, it)
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.Resource]{}, repository.MapPgError(err)
	}
	return res, nil
}

func (r *resourceRepository) Delete(ctx context.Context, resourceID string) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM resources WHERE resource_id = $1`, resourceID)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ResourceRepository = (*resourceRepository)(nil)
