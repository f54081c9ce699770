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

type EndpointRepository struct {
	pool *pgxpool.Pool
}

func NewEndpointRepository(pool *pgxpool.Pool) *EndpointRepository {
	return &EndpointRepository{pool: pool}
}

const endpointColumns = `id, route, verb, roles, created_at, updated_at, disabled_at`

func scanEndpoint(row pgx.Row) (model.EndpointPolicy, error) {
	var p model.EndpointPolicy
	err := row.Scan(&p.ID, &p.Route, &p.Verb, &p.Roles,
		&p.CreatedAt, &p.UpdatedAt, &p.DisabledAt)
	return p, err
}

// FindActiveByRouteAndVerb is the authorization filter's lookup. It runs on
// every request whose route may be protected, so it stays a single indexed
// query. The bool return distinguishes "no policy registered" from a store
// failure; callers must treat only the error as fail-closed.
func (r *EndpointRepository) FindActiveByRouteAndVerb(ctx context.Context, route string, verb string) (model.EndpointPolicy, bool, error) {
	p, err := scanEndpoint(r.pool.QueryRow(ctx,
		`SELECT `+endpointColumns+` FROM endpoints
		 WHERE route = $1 AND verb = $2 AND disabled_at IS NULL`,
		route, verb))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.EndpointPolicy{}, false, nil
	}
	if err != nil {
		return model.EndpointPolicy{}, false, fmt.Errorf("find endpoint by route and verb: %w", err)
	}
	return p, true, nil
}

func (r *EndpointRepository) FindByID(ctx context.Context, id string) (model.EndpointPolicy, error) {
	p, err := scanEndpoint(r.pool.QueryRow(ctx,
		`SELECT `+endpointColumns+` FROM endpoints WHERE id = $1 AND disabled_at IS NULL`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.EndpointPolicy{}, model.ErrEndpointNotFound
	}
	if err != nil {
		return model.EndpointPolicy{}, fmt.Errorf("find endpoint by id: %w", err)
	}
	return p, nil
}

func (r *EndpointRepository) Create(ctx context.Context, p model.EndpointPolicy) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO endpoints (id, route, verb, roles, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Route, p.Verb, p.Roles, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create endpoint: %w", err)
	}
	return nil
}

func (r *EndpointRepository) Update(ctx context.Context, p model.EndpointPolicy) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE endpoints SET route = $2, verb = $3, roles = $4, updated_at = $5
		 WHERE id = $1 AND disabled_at IS NULL`,
		p.ID, p.Route, p.Verb, p.Roles, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update endpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEndpointNotFound
	}
	return nil
}

func (r *EndpointRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE endpoints SET disabled_at = $2, updated_at = $2 WHERE id = $1 AND disabled_at IS NULL`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete endpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEndpointNotFound
	}
	return nil
}

func (r *EndpointRepository) List(ctx context.Context, filter model.EndpointFilter) (model.Page[model.EndpointPolicy], error) {
	where := []string{"disabled_at IS NULL"}
	args := []any{}

	if strings.TrimSpace(filter.Route) != "" {
		args = append(args, "%"+strings.TrimSpace(filter.Route)+"%")
		where = append(where, fmt.Sprintf("route ILIKE $%d", len(args)))
	}
	if strings.TrimSpace(filter.Verb) != "" {
		args = append(args, strings.ToUpper(strings.TrimSpace(filter.Verb)))
		where = append(where, fmt.Sprintf("verb = $%d", len(args)))
	}

	whereSQL := strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM endpoints WHERE `+whereSQL, args...).Scan(&total); err != nil {
		return model.Page[model.EndpointPolicy]{}, fmt.Errorf("count endpoints: %w", err)
	}

	query := `SELECT ` + endpointColumns + ` FROM endpoints WHERE ` + whereSQL + ` ORDER BY route, verb`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Page*filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return model.Page[model.EndpointPolicy]{}, fmt.Errorf("list endpoints: %w", err)
	}
	defer rows.Close()

	var policies []model.EndpointPolicy
	for rows.Next() {
		p, err := scanEndpoint(rows)
		if err != nil {
			return model.Page[model.EndpointPolicy]{}, fmt.Errorf("scan endpoint: %w", err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return model.Page[model.EndpointPolicy]{}, err
	}

	return model.NewPage(policies, total, filter.Page, filter.Limit), nil
}
