package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
)

func newRoleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRoleRepositoryListWithSearch(t *testing.T) {
	db, mock, cleanup := newRoleRepoMock(t)
	defer cleanup()

	repo := NewRoleRepository(db)
	rows := sqlmock.NewRows([]string{"id", "name", "permission", "user_id", "user_name", "created_at", "updated_at"}).
		AddRow("editor", "Editor", []byte(`{"users":{"read":true,"write":false,"delete":false}}`), "u1", "Jane Admin", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, permission")).
		WithArgs("%edit%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM roles WHERE 1=1")).
		WithArgs("%edit%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM roles")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	roles, rowCount, totalCount, err := repo.List(context.Background(), models.RoleFilter{Search: "edit", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, roles, 1)
	require.Equal(t, 1, rowCount)
	require.Equal(t, 5, totalCount)
	require.True(t, roles[0].Permission["users"].Read)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newRoleRepoMock(t)
	defer cleanup()

	repo := NewRoleRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roles")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	userID := "u1"
	userName := "Jane Admin"
	role := &models.Role{
		ID:         "editor",
		Name:       "Editor",
		Permission: models.PermissionSet{"users": {Read: true}},
		UserID:     &userID,
		UserName:   &userName,
	}
	require.NoError(t, repo.Create(context.Background(), role))

	rows := sqlmock.NewRows([]string{"id", "name", "permission", "user_id", "user_name", "created_at", "updated_at"}).
		AddRow("editor", "Editor", []byte(`{"users":{"read":true,"write":false,"delete":false}}`), "u1", "Jane Admin", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, permission")).
		WithArgs("editor").
		WillReturnRows(rows)

	found, err := repo.FindByID(context.Background(), "editor")
	require.NoError(t, err)
	require.Equal(t, "Editor", found.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepositoryUpdateReportsAffected(t *testing.T) {
	db, mock, cleanup := newRoleRepoMock(t)
	defer cleanup()

	repo := NewRoleRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE roles SET name")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.Update(context.Background(), &models.Role{ID: "ghost", Name: "Ghost"})
	require.NoError(t, err)
	require.Equal(t, int64(0), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepositoryDeleteReportsAffected(t *testing.T) {
	db, mock, cleanup := newRoleRepoMock(t)
	defer cleanup()

	repo := NewRoleRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM roles WHERE id")).
		WithArgs("editor").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Delete(context.Background(), "editor")
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepositoryPermissionUsage(t *testing.T) {
	db, mock, cleanup := newRoleRepoMock(t)
	defer cleanup()

	repo := NewRoleRepository(db)
	rows := sqlmock.NewRows([]string{"module", "count"}).
		AddRow("pr-distributions", 2).
		AddRow("users", 1)
	mock.ExpectQuery(regexp.QuoteMeta("FROM roles, jsonb_each(permission)")).
		WillReturnRows(rows)

	usage, err := repo.PermissionUsage(context.Background())
	require.NoError(t, err)
	require.Len(t, usage, 2)
	require.Equal(t, "pr-distributions", usage[0].Module)
	require.Equal(t, 2, usage[0].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}
