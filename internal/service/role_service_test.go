package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
	appErrors "github.com/guestpostlinks/pr-admin-api/pkg/errors"
)

type fakeRoleRepo struct {
	roles          map[string]*models.Role
	existsByIDName bool
	nameTaken      bool
	created        *models.Role
	updated        *models.Role
	updateAffected int64
	deleteAffected int64
	usage          []models.PermissionUsage
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: map[string]*models.Role{}, updateAffected: 1, deleteAffected: 1}
}

func (f *fakeRoleRepo) List(_ context.Context, _ models.RoleFilter) ([]models.Role, int, int, error) {
	var roles []models.Role
	for _, r := range f.roles {
		roles = append(roles, *r)
	}
	return roles, len(roles), len(roles), nil
}

func (f *fakeRoleRepo) FindByID(_ context.Context, id string) (*models.Role, error) {
	if r, ok := f.roles[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRoleRepo) ExistsByIDOrName(_ context.Context, _, _ string) (bool, error) {
	return f.existsByIDName, nil
}

func (f *fakeRoleRepo) NameTakenByOther(_ context.Context, _, _ string) (bool, error) {
	return f.nameTaken, nil
}

func (f *fakeRoleRepo) Create(_ context.Context, role *models.Role) error {
	f.created = role
	f.roles[role.ID] = role
	return nil
}

func (f *fakeRoleRepo) Update(_ context.Context, role *models.Role) (int64, error) {
	f.updated = role
	return f.updateAffected, nil
}

func (f *fakeRoleRepo) Delete(_ context.Context, _ string) (int64, error) {
	return f.deleteAffected, nil
}

func (f *fakeRoleRepo) PermissionUsage(_ context.Context) ([]models.PermissionUsage, error) {
	return f.usage, nil
}

type fakeRoleUserRepo struct {
	countByRole     int
	cascadedRoleID  string
	cascadedPermSet models.PermissionSet
}

func (f *fakeRoleUserRepo) CountByRole(_ context.Context, _ string) (int, error) {
	return f.countByRole, nil
}

func (f *fakeRoleUserRepo) CascadeRole(_ context.Context, roleID string, permission models.PermissionSet) error {
	f.cascadedRoleID = roleID
	f.cascadedPermSet = permission
	return nil
}

func newTestRoleService(roles *fakeRoleRepo, users *fakeRoleUserRepo) *RoleService {
	if users == nil {
		users = &fakeRoleUserRepo{}
	}
	return NewRoleService(roles, users, nil, nil)
}

func TestCreateRoleRecordsCreator(t *testing.T) {
	repo := newFakeRoleRepo()
	svc := newTestRoleService(repo, nil)

	actor := &models.User{ID: "user-1", FullName: "Jane Admin"}
	role, err := svc.Create(context.Background(), CreateRoleRequest{
		ID:   "editor",
		Name: "Editor",
		Permission: models.PermissionSet{
			"pr-distributions": {Read: true, Write: true},
		},
	}, actor)
	require.NoError(t, err)
	require.Equal(t, "editor", role.ID)
	require.NotNil(t, role.UserID)
	require.Equal(t, "user-1", *role.UserID)
	require.Equal(t, "Jane Admin", *role.UserName)
}

func TestCreateRoleRejectsDuplicate(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.existsByIDName = true
	svc := newTestRoleService(repo, nil)

	_, err := svc.Create(context.Background(), CreateRoleRequest{ID: "editor", Name: "Editor"}, nil)
	require.Error(t, err)
	require.Equal(t, 409, appErrors.FromError(err).Status)
}

func TestUpdateRoleCascadesWhenRequested(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.roles["editor"] = &models.Role{ID: "editor", Name: "Editor"}
	users := &fakeRoleUserRepo{}
	svc := newTestRoleService(repo, users)

	newPerm := models.PermissionSet{"roles": {Read: true}}
	role, err := svc.Update(context.Background(), "editor", UpdateRoleRequest{
		Permission: newPerm,
		UpdateAll:  true,
	})
	require.NoError(t, err)
	require.Equal(t, newPerm, role.Permission)
	require.Equal(t, "editor", users.cascadedRoleID)
	require.Equal(t, newPerm, users.cascadedPermSet)
}

func TestUpdateRoleSkipsCascadeByDefault(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.roles["editor"] = &models.Role{ID: "editor", Name: "Editor"}
	users := &fakeRoleUserRepo{}
	svc := newTestRoleService(repo, users)

	_, err := svc.Update(context.Background(), "editor", UpdateRoleRequest{
		Permission: models.PermissionSet{"roles": {Read: true}},
	})
	require.NoError(t, err)
	require.Empty(t, users.cascadedRoleID)
}

func TestUpdateRoleRejectsTakenName(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.roles["editor"] = &models.Role{ID: "editor", Name: "Editor"}
	repo.nameTaken = true
	svc := newTestRoleService(repo, nil)

	name := "Admin"
	_, err := svc.Update(context.Background(), "editor", UpdateRoleRequest{Name: &name})
	require.Error(t, err)
	require.Equal(t, 409, appErrors.FromError(err).Status)
}

func TestDeleteRoleGuardsAssignedUsers(t *testing.T) {
	repo := newFakeRoleRepo()
	users := &fakeRoleUserRepo{countByRole: 3}
	svc := newTestRoleService(repo, users)

	err := svc.Delete(context.Background(), "editor")
	require.Error(t, err)
	require.Equal(t, 409, appErrors.FromError(err).Status)
}

func TestDeleteRoleMissingIsNotFound(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.deleteAffected = 0
	svc := newTestRoleService(repo, nil)

	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	require.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestPermissionUsagePassthrough(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.usage = []models.PermissionUsage{{Module: "pr-distributions", Count: 2}}
	svc := newTestRoleService(repo, nil)

	usage, err := svc.PermissionUsage(context.Background())
	require.NoError(t, err)
	require.Len(t, usage, 1)
	require.Equal(t, "pr-distributions", usage[0].Module)
	require.Equal(t, 2, usage[0].Count)
}
