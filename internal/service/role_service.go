package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
	appErrors "github.com/guestpostlinks/pr-admin-api/pkg/errors"
)

type roleRepository interface {
	List(ctx context.Context, filter models.RoleFilter) ([]models.Role, int, int, error)
	FindByID(ctx context.Context, id string) (*models.Role, error)
	ExistsByIDOrName(ctx context.Context, id, name string) (bool, error)
	NameTakenByOther(ctx context.Context, id, name string) (bool, error)
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	PermissionUsage(ctx context.Context) ([]models.PermissionUsage, error)
}

type roleUserRepository interface {
	CountByRole(ctx context.Context, roleID string) (int, error)
	CascadeRole(ctx context.Context, roleID string, permission models.PermissionSet) error
}

// CreateRoleRequest creates a role under a caller-supplied identifier.
type CreateRoleRequest struct {
	ID         string               `json:"id" validate:"required"`
	Name       string               `json:"name" validate:"required"`
	Permission models.PermissionSet `json:"permission"`
}

// UpdateRoleRequest renames a role or replaces its permission set. UpdateAll
// additionally pushes the new permission set onto every user holding the
// role, refreshing their snapshots.
type UpdateRoleRequest struct {
	Name       *string              `json:"name"`
	Permission models.PermissionSet `json:"permission"`
	UpdateAll  bool                 `json:"update_all"`
}

// RoleListResult pairs a page of roles with pagination metadata.
type RoleListResult struct {
	Roles      []models.Role     `json:"roles"`
	Pagination models.Pagination `json:"pagination"`
}

// RoleService manages named permission sets.
type RoleService struct {
	roles     roleRepository
	users     roleUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoleService constructs a RoleService instance.
func NewRoleService(roles roleRepository, users roleUserRepository, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoleService{roles: roles, users: users, validator: validate, logger: logger}
}

// List returns a filtered, paginated page of roles.
func (s *RoleService) List(ctx context.Context, filter models.RoleFilter) (*RoleListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}

	roles, rowCount, totalCount, err := s.roles.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list roles")
	}

	return &RoleListResult{
		Roles: roles,
		Pagination: models.Pagination{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			RowCount:   rowCount,
			TotalCount: totalCount,
		},
	}, nil
}

// Get returns a single role by id.
func (s *RoleService) Get(ctx context.Context, id string) (*models.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return nil, appErrors.Internal(err, "failed to load role")
	}
	return role, nil
}

// Create stores a new role, rejecting duplicate identifiers and names. The
// acting user is recorded as the creator snapshot.
func (s *RoleService) Create(ctx context.Context, req CreateRoleRequest, actor *models.User) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}

	exists, err := s.roles.ExistsByIDOrName(ctx, req.ID, req.Name)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check role")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "role id or name already exists")
	}

	role := &models.Role{
		ID:         req.ID,
		Name:       req.Name,
		Permission: req.Permission,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if actor != nil {
		role.UserID = &actor.ID
		role.UserName = &actor.FullName
	}

	if err := s.roles.Create(ctx, role); err != nil {
		return nil, appErrors.Internal(err, "failed to create role")
	}
	return role, nil
}

// Update renames a role or replaces its permission set. When UpdateAll is
// set the new permission set also overwrites the snapshot on every user
// assigned to the role.
func (s *RoleService) Update(ctx context.Context, id string, req UpdateRoleRequest) (*models.Role, error) {
	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != role.Name {
		taken, err := s.roles.NameTakenByOther(ctx, id, *req.Name)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to check role name")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "role name already exists")
		}
		role.Name = *req.Name
	}

	if req.Permission != nil {
		role.Permission = req.Permission
	}
	role.UpdatedAt = time.Now().UTC()

	affected, err := s.roles.Update(ctx, role)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to update role")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "role not found")
	}

	if req.UpdateAll {
		if err := s.users.CascadeRole(ctx, role.ID, role.Permission); err != nil {
			return nil, appErrors.Internal(err, "failed to cascade role permissions")
		}
	}

	return role, nil
}

// Delete removes a role unless any user still holds it.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	inUse, err := s.users.CountByRole(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to check role usage")
	}
	if inUse > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "role is assigned to users")
	}

	affected, err := s.roles.Delete(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to delete role")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "role not found")
	}
	return nil
}

// PermissionUsage reports, per module, how many roles grant at least one
// capability on it.
func (s *RoleService) PermissionUsage(ctx context.Context) ([]models.PermissionUsage, error) {
	usage, err := s.roles.PermissionUsage(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to aggregate permission usage")
	}
	return usage, nil
}
