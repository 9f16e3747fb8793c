package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
)

const (
	distributionColumns = `id, grid_id, exchange_symbol, recipient, url, potential_reach, about, value, report_title, uploaded_by, soft_delete, created_at, updated_at`
	groupColumns        = `id, grid_id, report_title, uploaded_by, total_records, overall_potential_reach, distribution_data, status, soft_delete, is_private, shared_emails, created_at, updated_at`
)

// DistributionRepository provides database access for report rows and batch
// group records. The two stores are independent copies of the same logical
// rows; no referential integrity ties them together.
type DistributionRepository struct {
	db *sqlx.DB
}

// NewDistributionRepository creates a new instance of DistributionRepository.
func NewDistributionRepository(db *sqlx.DB) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// InsertRows bulk-inserts every report row of a batch.
func (r *DistributionRepository) InsertRows(ctx context.Context, rows []models.Distribution) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		if rows[i].CreatedAt.IsZero() {
			rows[i].CreatedAt = now
		}
		rows[i].UpdatedAt = now
	}

	const query = `INSERT INTO pr_distributions (id, grid_id, exchange_symbol, recipient, url, potential_reach, about, value, report_title, uploaded_by, soft_delete, created_at, updated_at)
		VALUES (:id, :grid_id, :exchange_symbol, :recipient, :url, :potential_reach, :about, :value, :report_title, :uploaded_by, :soft_delete, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rows); err != nil {
		return fmt.Errorf("insert distribution rows: %w", err)
	}
	return nil
}

// FindRowsByGridID returns all live rows for a batch.
func (r *DistributionRepository) FindRowsByGridID(ctx context.Context, gridID string) ([]models.Distribution, error) {
	query := fmt.Sprintf(`SELECT %s FROM pr_distributions WHERE grid_id = $1 AND soft_delete = FALSE ORDER BY created_at`, distributionColumns)
	var rows []models.Distribution
	if err := r.db.SelectContext(ctx, &rows, query, gridID); err != nil {
		return nil, fmt.Errorf("find distribution rows: %w", err)
	}
	return rows, nil
}

// SoftDeleteRows marks every live row of a batch as deleted and returns the
// number of rows affected.
func (r *DistributionRepository) SoftDeleteRows(ctx context.Context, gridID string) (int64, error) {
	const query = `UPDATE pr_distributions SET soft_delete = TRUE, updated_at = $2 WHERE grid_id = $1 AND soft_delete = FALSE`
	result, err := r.db.ExecContext(ctx, query, gridID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("soft delete distribution rows: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("soft delete distribution rows affected: %w", err)
	}
	return affected, nil
}

// CreateGroup persists the batch aggregate record.
func (r *DistributionRepository) CreateGroup(ctx context.Context, group *models.DistributionGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now

	const query = `INSERT INTO pr_distribution_groups (id, grid_id, report_title, uploaded_by, total_records, overall_potential_reach, distribution_data, status, soft_delete, is_private, shared_emails, created_at, updated_at)
		VALUES (:id, :grid_id, :report_title, :uploaded_by, :total_records, :overall_potential_reach, :distribution_data, :status, :soft_delete, :is_private, :shared_emails, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create distribution group: %w", err)
	}
	return nil
}

// FindGroupByGridID returns the live group record for a batch.
func (r *DistributionRepository) FindGroupByGridID(ctx context.Context, gridID string) (*models.DistributionGroup, error) {
	query := fmt.Sprintf(`SELECT %s FROM pr_distribution_groups WHERE grid_id = $1 AND soft_delete = FALSE LIMIT 1`, groupColumns)
	var group models.DistributionGroup
	if err := r.db.GetContext(ctx, &group, query, gridID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find distribution group: %w", err)
	}
	return &group, nil
}

// ListGroups returns every live group record, newest first.
func (r *DistributionRepository) ListGroups(ctx context.Context) ([]models.DistributionGroup, error) {
	query := fmt.Sprintf(`SELECT %s FROM pr_distribution_groups WHERE soft_delete = FALSE ORDER BY created_at DESC`, groupColumns)
	var groups []models.DistributionGroup
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list distribution groups: %w", err)
	}
	return groups, nil
}

// SoftDeleteGroup marks the live group record as deleted and returns the
// number of rows affected.
func (r *DistributionRepository) SoftDeleteGroup(ctx context.Context, gridID string) (int64, error) {
	const query = `UPDATE pr_distribution_groups SET soft_delete = TRUE, updated_at = $2 WHERE grid_id = $1 AND soft_delete = FALSE`
	result, err := r.db.ExecContext(ctx, query, gridID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("soft delete distribution group: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("soft delete distribution group affected: %w", err)
	}
	return affected, nil
}

// UpdateSharing writes the privacy flag and allow-list of the live group
// record and returns the number of rows matched.
func (r *DistributionRepository) UpdateSharing(ctx context.Context, gridID string, isPrivate bool, emails models.EmailList) (int64, error) {
	const query = `UPDATE pr_distribution_groups SET is_private = $2, shared_emails = $3, updated_at = $4 WHERE grid_id = $1 AND soft_delete = FALSE`
	result, err := r.db.ExecContext(ctx, query, gridID, isPrivate, emails, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("update distribution sharing: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update distribution sharing affected: %w", err)
	}
	return affected, nil
}

// UpdateUploaderSnapshot rewrites the uploader snapshot on rows and groups
// after the uploading user is renamed. Two independent updates, best effort.
func (r *DistributionRepository) UpdateUploaderSnapshot(ctx context.Context, uploader models.Uploader) error {
	now := time.Now().UTC()
	const rowQuery = `UPDATE pr_distributions SET uploaded_by = $2, updated_at = $3 WHERE uploaded_by->>'id' = $1`
	if _, err := r.db.ExecContext(ctx, rowQuery, uploader.ID, uploader, now); err != nil {
		return fmt.Errorf("update row uploader snapshot: %w", err)
	}
	const groupQuery = `UPDATE pr_distribution_groups SET uploaded_by = $2, updated_at = $3 WHERE uploaded_by->>'id' = $1`
	if _, err := r.db.ExecContext(ctx, groupQuery, uploader.ID, uploader, now); err != nil {
		return fmt.Errorf("update group uploader snapshot: %w", err)
	}
	return nil
}
