package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chat-api/internal/model"
)

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

const roleColumns = `id, name, normalized_name, created_at, updated_at, disabled_at`

func scanRole(row pgx.Row) (model.Role, error) {
	var role model.Role
	err := row.Scan(&role.ID, &role.Name, &role.NormalizedName,
		&role.CreatedAt, &role.UpdatedAt, &role.DisabledAt)
	return role, err
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (model.Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE id = $1 AND disabled_at IS NULL`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Role{}, model.ErrRoleNotFound
	}
	if err != nil {
		return model.Role{}, fmt.Errorf("find role by id: %w", err)
	}
	return role, nil
}

// FindByName matches on the normalized (uppercase) name.
func (r *RoleRepository) FindByName(ctx context.Context, name string) (model.Role, bool, error) {
	role, err := scanRole(r.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles
		 WHERE normalized_name = $1 AND disabled_at IS NULL`,
		strings.ToUpper(strings.TrimSpace(name))))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Role{}, false, nil
	}
	if err != nil {
		return model.Role{}, false, fmt.Errorf("find role by name: %w", err)
	}
	return role, true, nil
}

func (r *RoleRepository) Create(ctx context.Context, role model.Role) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO roles (id, name, normalized_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		role.ID, role.Name, role.NormalizedName, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

func (r *RoleRepository) Update(ctx context.Context, role model.Role) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE roles SET name = $2, normalized_name = $3, updated_at = $4
		 WHERE id = $1 AND disabled_at IS NULL`,
		role.ID, role.Name, role.NormalizedName, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE roles SET disabled_at = $2, updated_at = $2 WHERE id = $1 AND disabled_at IS NULL`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) List(ctx context.Context, filter model.RoleFilter) (model.Page[model.Role], error) {
	where := "disabled_at IS NULL"
	args := []any{}
	if strings.TrimSpace(filter.Name) != "" {
		args = append(args, "%"+strings.TrimSpace(filter.Name)+"%")
		where += " AND name ILIKE $1"
	}

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM roles WHERE `+where, args...).Scan(&total); err != nil {
		return model.Page[model.Role]{}, fmt.Errorf("count roles: %w", err)
	}

	query := `SELECT ` + roleColumns + ` FROM roles WHERE ` + where + ` ORDER BY normalized_name`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Page*filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return model.Page[model.Role]{}, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return model.Page[model.Role]{}, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return model.Page[model.Role]{}, err
	}

	return model.NewPage(roles, total, filter.Page, filter.Limit), nil
}
