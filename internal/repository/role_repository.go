package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
)

const roleColumns = `id, name, permission, user_id, user_name, created_at, updated_at`

// RoleRepository provides database access for role management.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository creates a new instance of RoleRepository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// List returns a page of roles matching the filter, the filtered row count,
// and the unfiltered total count.
func (r *RoleRepository) List(ctx context.Context, filter models.RoleFilter) ([]models.Role, int, int, error) {
	baseQuery := `FROM roles WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		baseQuery += fmt.Sprintf(" AND (name ILIKE $%d OR id ILIKE $%d OR permission::text ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+strings.TrimSpace(filter.Search)+"%")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", roleColumns, baseQuery, pageSize, offset)
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, listQuery, args...); err != nil {
		return nil, 0, 0, fmt.Errorf("list roles: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var rowCount int
	if err := r.db.GetContext(ctx, &rowCount, countQuery, args...); err != nil {
		return nil, 0, 0, fmt.Errorf("count roles: %w", err)
	}

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM roles`); err != nil {
		return nil, 0, 0, fmt.Errorf("count all roles: %w", err)
	}

	return roles, rowCount, totalCount, nil
}

// FindByID returns a role by identifier.
func (r *RoleRepository) FindByID(ctx context.Context, id string) (*models.Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM roles WHERE id = $1 LIMIT 1`, roleColumns)
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find role by id: %w", err)
	}
	return &role, nil
}

// ExistsByIDOrName reports whether any role uses the id or the name.
func (r *RoleRepository) ExistsByIDOrName(ctx context.Context, id, name string) (bool, error) {
	const query = `SELECT COUNT(*) FROM roles WHERE id = $1 OR name = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id, name); err != nil {
		return false, fmt.Errorf("check role id or name: %w", err)
	}
	return count > 0, nil
}

// NameTakenByOther reports whether a different role already uses the name.
func (r *RoleRepository) NameTakenByOther(ctx context.Context, id, name string) (bool, error) {
	const query = `SELECT COUNT(*) FROM roles WHERE id <> $1 AND name = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id, name); err != nil {
		return false, fmt.Errorf("check role name: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new role. The identifier is caller-supplied.
func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	now := time.Now().UTC()
	if role.CreatedAt.IsZero() {
		role.CreatedAt = now
	}
	role.UpdatedAt = now

	const query = `INSERT INTO roles (id, name, permission, user_id, user_name, created_at, updated_at)
		VALUES (:id, :name, :permission, :user_id, :user_name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, role); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// Update rewrites the role's name and permission set. Returns the number of
// affected rows so the caller can distinguish a missing role.
func (r *RoleRepository) Update(ctx context.Context, role *models.Role) (int64, error) {
	role.UpdatedAt = time.Now().UTC()
	const query = `UPDATE roles SET name = :name, permission = :permission, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, role)
	if err != nil {
		return 0, fmt.Errorf("update role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update role affected rows: %w", err)
	}
	return affected, nil
}

// UpdateCreatorName refreshes the creator snapshot on roles created by the
// user, used when the user is renamed.
func (r *RoleRepository) UpdateCreatorName(ctx context.Context, userID, userName string) error {
	const query = `UPDATE roles SET user_name = $2, updated_at = $3 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, userName, time.Now().UTC()); err != nil {
		return fmt.Errorf("update role creator name: %w", err)
	}
	return nil
}

// Delete removes a role. Roles are the only hard-deleted entity; deletion is
// blocked upstream while any user references the role.
func (r *RoleRepository) Delete(ctx context.Context, id string) (int64, error) {
	const query = `DELETE FROM roles WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete role affected rows: %w", err)
	}
	return affected, nil
}

// PermissionUsage counts, per module key, the roles granting at least one of
// read/write/delete for that module.
func (r *RoleRepository) PermissionUsage(ctx context.Context) ([]models.PermissionUsage, error) {
	const query = `SELECT perm.key AS module, COUNT(*) AS count
		FROM roles, jsonb_each(permission) AS perm
		WHERE (perm.value->>'read')::boolean
		   OR (perm.value->>'write')::boolean
		   OR (perm.value->>'delete')::boolean
		GROUP BY perm.key
		ORDER BY perm.key`
	var usage []models.PermissionUsage
	if err := r.db.SelectContext(ctx, &usage, query); err != nil {
		return nil, fmt.Errorf("aggregate permission usage: %w", err)
	}
	return usage, nil
}
