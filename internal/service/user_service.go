package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
	appErrors "github.com/guestpostlinks/pr-admin-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SoftDelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
}

type userRoleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Role, error)
	UpdateCreatorName(ctx context.Context, userID, userName string) error
}

type uploaderSnapshotRepository interface {
	UpdateUploaderSnapshot(ctx context.Context, uploader models.Uploader) error
}

// CreateUserRequest is the admin user-creation payload.
type CreateUserRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// UpdateUserRequest carries partial updates; nil fields are left unchanged.
type UpdateUserRequest struct {
	FullName  *string `json:"full_name"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password" validate:"omitempty,min=6"`
	Role      *string `json:"role"`
	Status    *string `json:"status"`
	IsBlocked *bool   `json:"is_blocked"`
	IsDeleted *bool   `json:"is_deleted"`
}

// UserService manages account records and keeps the denormalized snapshots
// of user data elsewhere in the system consistent.
type UserService struct {
	users         userRepository
	roles         userRoleRepository
	distributions uploaderSnapshotRepository
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(
	users userRepository,
	roles userRoleRepository,
	distributions uploaderSnapshotRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{
		users:         users,
		roles:         roles,
		distributions: distributions,
		validator:     validate,
		logger:        logger,
	}
}

// List returns all non-deleted users.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list users")
	}
	return users, nil
}

// Get returns a single user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	return user, nil
}

// Create provisions an account on behalf of an administrator. The role's
// permission set is snapshotted onto the record at creation time.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	status := req.Status
	if status == "" {
		status = models.UserStatusActive
	}

	user := &models.User{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		RoleID:       req.Role,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if req.Role != "" {
		permission, err := s.rolePermission(ctx, req.Role)
		if err != nil {
			return nil, err
		}
		user.Permission = permission
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Internal(err, "failed to create user")
	}
	return user, nil
}

// Update applies a partial update. A name change cascades to the creator
// snapshot on roles and the uploader snapshot embedded in report records; a
// role change refreshes the permission snapshot from the new role.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}

	nameChanged := false
	if req.FullName != nil && *req.FullName != user.FullName {
		user.FullName = *req.FullName
		nameChanged = true
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.users.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to check email")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		user.Email = *req.Email
	}

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to hash password")
		}
		user.PasswordHash = string(hash)
	}

	if req.Role != nil && *req.Role != user.RoleID {
		user.RoleID = *req.Role
		user.Permission = nil
		if *req.Role != "" {
			permission, err := s.rolePermission(ctx, *req.Role)
			if err != nil {
				return nil, err
			}
			user.Permission = permission
		}
	}

	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.IsBlocked != nil {
		user.IsBlocked = *req.IsBlocked
	}
	if req.IsDeleted != nil {
		user.IsDeleted = *req.IsDeleted
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, appErrors.Internal(err, "failed to update user")
	}

	if nameChanged {
		if err := s.roles.UpdateCreatorName(ctx, user.ID, user.FullName); err != nil {
			s.logger.Warn("failed to cascade name to roles", zap.String("user_id", user.ID), zap.Error(err))
		}
		uploader := models.Uploader{ID: user.ID, Name: user.FullName, Email: user.Email}
		if err := s.distributions.UpdateUploaderSnapshot(ctx, uploader); err != nil {
			s.logger.Warn("failed to cascade name to reports", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return user, nil
}

// Delete soft-deletes a user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.users.SoftDelete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete user")
	}
	return nil
}

// HardDelete removes the row permanently.
func (s *UserService) HardDelete(ctx context.Context, id string) error {
	if err := s.users.HardDelete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to purge user")
	}
	return nil
}

func (s *UserService) rolePermission(ctx context.Context, roleID string) (models.PermissionSet, error) {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "role does not exist")
		}
		return nil, appErrors.Internal(err, "failed to load role")
	}
	return role.Permission, nil
}
