package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
)

func newDistributionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sampleUploaderJSON() []byte {
	return []byte(`{"id":"u1","name":"Jane Admin","email":"jane@guestpostlinks.net"}`)
}

func TestDistributionRepositoryInsertRows(t *testing.T) {
	db, mock, cleanup := newDistributionRepoMock(t)
	defer cleanup()

	repo := NewDistributionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pr_distributions")).
		WillReturnResult(sqlmock.NewResult(0, 2))

	rows := []models.Distribution{
		{GridID: "grid-1", ExchangeSymbol: "NASDAQ:ACME", PotentialReach: 1200, ReportTitle: "Q3"},
		{GridID: "grid-1", ExchangeSymbol: "NYSE:BETA", PotentialReach: 0, ReportTitle: "Q3"},
	}
	require.NoError(t, repo.InsertRows(context.Background(), rows))
	require.NotEmpty(t, rows[0].ID)
	require.False(t, rows[0].CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDistributionRepositoryInsertRowsEmptyIsNoop(t *testing.T) {
	db, mock, cleanup := newDistributionRepoMock(t)
	defer cleanup()

	repo := NewDistributionRepository(db)
	require.NoError(t, repo.InsertRows(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDistributionRepositoryFindRowsByGridID(t *testing.T) {
	db, mock, cleanup := newDistributionRepoMock(t)
	defer cleanup()

	repo := NewDistributionRepository(db)
	rows := sqlmock.NewRows([]string{"id", "grid_id", "exchange_symbol", "recipient", "url", "potential_reach", "about", "value", "report_title", "uploaded_by", "soft_delete", "created_at", "updated_at"}).
		AddRow("row-1", "grid-1", "NASDAQ:ACME", "Jane", "https://x", 1200, "Launch", "High", "Q3", sampleUploaderJSON(), false, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, grid_id, exchange_symbol")).
		WithArgs("grid-1").
		WillReturnRows(rows)

	found, err := repo.FindRowsByGridID(context.Background(), "grid-1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, int64(1200), found[0].PotentialReach)
	require.Equal(t, "u1", found[0].UploadedBy.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDistributionRepositorySoftDeleteRowsReturnsAffected(t *testing.T) {
	db, mock, cleanup := newDistributionRepoMock(t)
	defer cleanup()

	repo := NewDistributionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE pr_distributions SET soft_delete = TRUE")).
		WillReturnResult(sqlmock.NewResult(0, 4))

	affected, err := repo.SoftDeleteRows(context.Background(), "grid-1")
	require.NoError(t, err)
	require.Equal(t, int64(4), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDistributionRepositoryCreateAndFindGroup(t *testing.T) {
	db, mock, cleanup := newDistributionRepoMock(t)
	defer cleanup()

	repo := NewDistributionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pr_distribution_groups")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	group := &models.DistributionGroup{
		GridID:                "grid-1",
		ReportTitle:           "Q3",
		TotalRecords:          2,
		OverallPotentialReach: 1200,
		Status:                models.BatchStatusCompleted,
		IsPrivate:             true,
	}
	require.NoError(t, repo.CreateGroup(context.Background(), group))
	require.NotEmpty(t, group.ID)

	rows := sqlmock.NewRows([]string{"id", "grid_id", "report_title", "uploaded_by", "total_records", "overall_potential_reach", "distribution_data", "status", "soft_delete", "is_private", "shared_emails", "created_at", "updated_at"}).
		AddRow(group.ID, "grid-1", "Q3", sampleUploaderJSON(), 2, 1200, []byte(`[{"grid_id":"grid-1","potential_reach":1200}]`), models.BatchStatusCompleted, false, true, []byte(`["a@x.com"]`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, grid_id, report_title")).
		WithArgs("grid-1").
		WillReturnRows(rows)

	found, err := repo.FindGroupByGridID(context.Background(), "grid-1")
	require.NoError(t, err)
	require.Equal(t, int64(1200), found.OverallPotentialReach)
	require.Len(t, found.DistributionData, 1)
	require.Equal(t, models.EmailList{"a@x.com"}, found.SharedEmails)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDistributionRepositoryFindGroupMissingReturnsNoRows(t *testing.T) {
	db, mock, cleanup := newDistributionRepoMock(t)
	defer cleanup()

	repo := NewDistributionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, grid_id, report_title")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindGroupByGridID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDistributionRepositoryUpdateSharing(t *testing.T) {
	db, mock, cleanup := newDistributionRepoMock(t)
	defer cleanup()

	repo := NewDistributionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE pr_distribution_groups SET is_private")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	matched, err := repo.UpdateSharing(context.Background(), "grid-1", true, models.EmailList{"a@x.com"})
	require.NoError(t, err)
	require.Equal(t, int64(1), matched)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDistributionRepositoryUpdateUploaderSnapshot(t *testing.T) {
	db, mock, cleanup := newDistributionRepoMock(t)
	defer cleanup()

	repo := NewDistributionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE pr_distributions SET uploaded_by")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE pr_distribution_groups SET uploaded_by")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	uploader := models.Uploader{ID: "u1", Name: "Jane Updated", Email: "jane@guestpostlinks.net"}
	require.NoError(t, repo.UpdateUploaderSnapshot(context.Background(), uploader))
	require.NoError(t, mock.ExpectationsWereMet())
}
