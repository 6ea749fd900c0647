package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tyagiab3/user-service/internal/domain"
)

// RoleRepository defines persistence access for roles and user-role grants.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	ListByUserID(ctx context.Context, userID int64) ([]domain.Role, error)
	ListNamesByEmail(ctx context.Context, email string) ([]string, error)
	Assign(ctx context.Context, userID, roleID int64) (bool, error)
	Remove(ctx context.Context, userID, roleID int64) (bool, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	const query = `INSERT INTO roles (role_name) VALUES ($1) RETURNING id`

	return r.pool.QueryRow(ctx, query, role.Name).Scan(&role.ID)
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	const query = `SELECT id, role_name FROM roles WHERE role_name=$1`

	var role domain.Role
	if err := r.pool.QueryRow(ctx, query, name).Scan(&role.ID, &role.Name); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) ListByUserID(ctx context.Context, userID int64) ([]domain.Role, error) {
	const query = `
        SELECT r.id, r.role_name
        FROM roles r
        JOIN user_roles ur ON ur.role_id = r.id
        WHERE ur.user_id = $1
        ORDER BY r.role_name`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// ListNamesByEmail is the authoritative role lookup used on every
// authenticated request.
func (r *roleRepository) ListNamesByEmail(ctx context.Context, email string) ([]string, error) {
	const query = `
        SELECT r.role_name
        FROM roles r
        JOIN user_roles ur ON ur.role_id = r.id
        JOIN users u ON u.id = ur.user_id
        WHERE u.email = $1
        ORDER BY r.role_name`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *roleRepository) Assign(ctx context.Context, userID, roleID int64) (bool, error) {
	const query = `
        INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
        ON CONFLICT (user_id, role_id) DO NOTHING`

	cmd, err := r.pool.Exec(ctx, query, userID, roleID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *roleRepository) Remove(ctx context.Context, userID, roleID int64) (bool, error) {
	const query = `DELETE FROM user_roles WHERE user_id=$1 AND role_id=$2`

	cmd, err := r.pool.Exec(ctx, query, userID, roleID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
