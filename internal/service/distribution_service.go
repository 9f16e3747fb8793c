package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
	appErrors "github.com/guestpostlinks/pr-admin-api/pkg/errors"
	"github.com/guestpostlinks/pr-admin-api/pkg/export"
)

// Required upload columns, case- and spelling-exact.
const (
	columnExchangeSymbol = "Exchange Symbol"
	columnRecipient      = "Recipient"
	columnURL            = "URL"
	columnPotentialReach = "Potential Reach"
	columnAbout          = "About"
	columnValue          = "Value"
)

var requiredColumns = []string{
	columnExchangeSymbol,
	columnRecipient,
	columnURL,
	columnPotentialReach,
	columnAbout,
	columnValue,
}

// Field order of exported rows. Mirrors the row object's own key set.
var exportFields = []string{
	"exchange_symbol",
	"recipient",
	"url",
	"potential_reach",
	"about",
	"value",
	"report_title",
	"grid_id",
}

type distributionRepository interface {
	InsertRows(ctx context.Context, rows []models.Distribution) error
	FindRowsByGridID(ctx context.Context, gridID string) ([]models.Distribution, error)
	SoftDeleteRows(ctx context.Context, gridID string) (int64, error)
	CreateGroup(ctx context.Context, group *models.DistributionGroup) error
	FindGroupByGridID(ctx context.Context, gridID string) (*models.DistributionGroup, error)
	ListGroups(ctx context.Context) ([]models.DistributionGroup, error)
	SoftDeleteGroup(ctx context.Context, gridID string) (int64, error)
	UpdateSharing(ctx context.Context, gridID string, isPrivate bool, emails models.EmailList) (int64, error)
}

// UploadResult summarises a completed batch ingestion.
type UploadResult struct {
	Message     string `json:"message"`
	Count       int    `json:"count"`
	ReportTitle string `json:"report_title"`
	GridID      string `json:"grid_id"`
}

// BatchReport bundles the live rows of a batch with computed aggregates.
type BatchReport struct {
	TotalCount            int                   `json:"totalCount"`
	OverallPotentialReach int64                 `json:"overallPotentialReach"`
	ReportTitle           string                `json:"reportTitle"`
	ReportCreatedAt       time.Time             `json:"reportCreatedAt"`
	Data                  []models.Distribution `json:"data"`
}

// ShareRequest updates privacy and the allow-list of a batch. IsPrivate is a
// pointer so a missing boolean is rejected rather than defaulted.
type ShareRequest struct {
	IsPrivate    *bool    `json:"is_private" validate:"required"`
	SharedEmails []string `json:"sharedEmails"`
}

// ShareResult reports the privacy state after the update.
type ShareResult struct {
	IsPrivate    bool             `json:"is_private"`
	SharedEmails models.EmailList `json:"sharedEmails"`
}

// VerifyResult is the outcome of a share-link access check. RequiresEmail
// signals the caller to collect an email; it is set both when no email was
// supplied and when the supplied one is not allow-listed.
type VerifyResult struct {
	Verify        bool   `json:"verify"`
	Message       string `json:"message"`
	ReportTitle   string `json:"report_title"`
	IsPrivate     bool   `json:"is_private"`
	GridID        string `json:"grid_id"`
	AccessGranted bool   `json:"access_granted"`
	RequiresEmail bool   `json:"requires_email,omitempty"`
}

// ReportData is the privacy-checked view of a batch, served from the group's
// embedded row copy.
type ReportData struct {
	ReportTitle           string                  `json:"report_title"`
	TotalRecords          int                     `json:"total_records"`
	OverallPotentialReach int64                   `json:"overallPotentialReach"`
	DistributionData      models.DistributionRows `json:"distribution_data"`
}

// DeleteResult reports how many records each store marked deleted.
type DeleteResult struct {
	EntriesModified int64 `json:"entriesModified"`
	GroupModified   int64 `json:"groupModified"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// DistributionService orchestrates report ingestion, sharing, retrieval and
// export.
type DistributionService struct {
	repo      distributionRepository
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
}

// NewDistributionService constructs a DistributionService instance. metrics
// may be nil.
func NewDistributionService(repo distributionRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *DistributionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DistributionService{
		repo:      repo,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// Upload parses a delimited report upload, persists one row per input line
// and a single aggregate group record. The pipeline runs synchronously; the
// group is stored with status Completed. The row insert and the group create
// are two independent writes with no transaction spanning them.
func (s *DistributionService) Upload(ctx context.Context, file io.Reader, filename, title string, uploader models.Uploader) (*UploadResult, error) {
	reportTitle := strings.TrimSpace(title)
	if reportTitle == "" {
		reportTitle = filename
	}

	records, err := parseUpload(file)
	if err != nil {
		return nil, err
	}

	gridID := uuid.NewString()
	s.logger.Info("generated grid id", zap.String("grid_id", gridID))

	rows := make([]models.Distribution, 0, len(records))
	var overallReach int64
	for _, record := range records {
		reach := digitsToInt(record[columnPotentialReach])
		overallReach += reach
		rows = append(rows, models.Distribution{
			GridID:         gridID,
			ExchangeSymbol: record[columnExchangeSymbol],
			Recipient:      record[columnRecipient],
			URL:            record[columnURL],
			PotentialReach: reach,
			About:          record[columnAbout],
			Value:          record[columnValue],
			ReportTitle:    reportTitle,
			UploadedBy:     uploader,
		})
	}

	start := time.Now()
	if err := s.repo.InsertRows(ctx, rows); err != nil {
		return nil, appErrors.Internal(err, "failed to insert report rows")
	}
	s.metrics.ObserveDBQuery("distribution_insert_rows", time.Since(start))

	group := &models.DistributionGroup{
		GridID:                gridID,
		ReportTitle:           reportTitle,
		UploadedBy:            uploader,
		TotalRecords:          len(rows),
		OverallPotentialReach: overallReach,
		DistributionData:      rows,
		Status:                models.BatchStatusCompleted,
		IsPrivate:             true,
		SharedEmails:          models.EmailList{},
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		// Rows are already committed at this point; there is no compensating
		// rollback and the orphaned rows stay behind.
		return nil, appErrors.Internal(err, "failed to create report group")
	}

	s.metrics.ObserveReportUpload(len(rows))

	return &UploadResult{
		Message:     "PR report uploaded successfully",
		Count:       len(rows),
		ReportTitle: reportTitle,
		GridID:      gridID,
	}, nil
}

// GetByBatchID returns all live rows for a batch plus computed aggregates.
// It performs no privacy check; it is mounted behind authentication only.
func (s *DistributionService) GetByBatchID(ctx context.Context, gridID string) (*BatchReport, error) {
	if gridID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grid_id is required")
	}

	rows, err := s.repo.FindRowsByGridID(ctx, gridID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load report rows")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no data for this grid_id")
	}

	report := &BatchReport{
		TotalCount:      len(rows),
		ReportTitle:     rows[0].ReportTitle,
		ReportCreatedAt: rows[0].CreatedAt,
		Data:            rows,
	}
	for _, row := range rows {
		report.OverallPotentialReach += row.PotentialReach
	}
	return report, nil
}

// GetGroupByGridID returns the live group record for a batch.
func (s *DistributionService) GetGroupByGridID(ctx context.Context, gridID string) (*models.DistributionGroup, error) {
	if gridID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grid_id is required")
	}

	group, err := s.repo.FindGroupByGridID(ctx, gridID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no group for this grid_id")
		}
		return nil, appErrors.Internal(err, "failed to load report group")
	}
	return group, nil
}

// ListGroups returns every live group record.
func (s *DistributionService) ListGroups(ctx context.Context) ([]models.DistributionGroup, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list report groups")
	}
	return groups, nil
}

// Delete soft-deletes the row set and the group record. Two independent
// updates; it fails Not Found only when neither store had a live record.
func (s *DistributionService) Delete(ctx context.Context, gridID string) (*DeleteResult, error) {
	if gridID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grid_id is required")
	}

	entries, err := s.repo.SoftDeleteRows(ctx, gridID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to delete report rows")
	}
	group, err := s.repo.SoftDeleteGroup(ctx, gridID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to delete report group")
	}

	if entries == 0 && group == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "nothing to delete or already deleted")
	}

	return &DeleteResult{EntriesModified: entries, GroupModified: group}, nil
}

// Share updates the privacy flag and allow-list of a batch. Private batches
// require a non-empty email list; emails merge into the existing allow-list
// with set-union semantics. Flipping to public clears the list.
func (s *DistributionService) Share(ctx context.Context, gridID string, req ShareRequest) (*ShareResult, error) {
	if gridID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grid_id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "is_private must be boolean")
	}

	isPrivate := *req.IsPrivate
	if isPrivate && len(req.SharedEmails) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sharedEmails required when private")
	}

	group, err := s.repo.FindGroupByGridID(ctx, gridID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report group not found")
		}
		return nil, appErrors.Internal(err, "failed to load report group")
	}

	emails := models.EmailList{}
	if isPrivate {
		emails = mergeEmails(group.SharedEmails, req.SharedEmails)
	}

	matched, err := s.repo.UpdateSharing(ctx, gridID, isPrivate, emails)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to update report sharing")
	}
	if matched == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report group not found")
	}

	return &ShareResult{IsPrivate: isPrivate, SharedEmails: emails}, nil
}

// VerifyURL checks whether the holder of a share link may view a batch. It
// is read-only, side-effect-free, and intentionally reachable without an
// authenticated session.
func (s *DistributionService) VerifyURL(ctx context.Context, gridID, email string) (*VerifyResult, error) {
	if gridID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grid_id is required")
	}

	group, err := s.repo.FindGroupByGridID(ctx, gridID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "link expired or report not found")
		}
		return nil, appErrors.Internal(err, "failed to load report group")
	}

	result := &VerifyResult{
		Verify:      true,
		ReportTitle: group.ReportTitle,
		IsPrivate:   group.IsPrivate,
		GridID:      group.GridID,
	}

	if !group.IsPrivate {
		result.Message = "Public report - Access granted"
		result.AccessGranted = true
		return result, nil
	}

	if email == "" {
		result.Message = "Private report - Email required for access"
		result.RequiresEmail = true
		return result, nil
	}

	if emailAuthorized(group.SharedEmails, email) {
		result.Message = "Access granted"
		result.AccessGranted = true
		return result, nil
	}

	// A non-matching email answers the same way as a missing one so the
	// response does not leak allow-list membership.
	result.Message = "Access denied - Email not authorized for this report"
	result.RequiresEmail = true
	return result, nil
}

// GetReportData serves the group's embedded row copy after re-running the
// privacy check inline, with aggregates recomputed from the embed.
func (s *DistributionService) GetReportData(ctx context.Context, gridID, email string) (*ReportData, error) {
	if gridID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grid_id is required")
	}

	group, err := s.repo.FindGroupByGridID(ctx, gridID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Internal(err, "failed to load report group")
	}

	if group.IsPrivate {
		if email == "" {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "email is required for private report")
		}
		if !emailAuthorized(group.SharedEmails, email) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "access denied - email not authorized")
		}
	}

	data := &ReportData{
		ReportTitle:      group.ReportTitle,
		TotalRecords:     len(group.DistributionData),
		DistributionData: group.DistributionData,
	}
	for _, row := range group.DistributionData {
		data.OverallPotentialReach += row.PotentialReach
	}
	return data, nil
}

// ExportCSV serializes the group's embedded row copy to CSV.
func (s *DistributionService) ExportCSV(ctx context.Context, gridID string) (*ExportFile, error) {
	group, dataset, err := s.exportDataset(ctx, gridID)
	if err != nil {
		return nil, err
	}

	content, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render csv export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("pr-report-%s.csv", group.GridID),
		ContentType: "text/csv",
		Content:     content,
	}, nil
}

// ExportPDF renders the group's embedded row copy as a tabular PDF.
func (s *DistributionService) ExportPDF(ctx context.Context, gridID string) (*ExportFile, error) {
	group, dataset, err := s.exportDataset(ctx, gridID)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.Render(*dataset, group.ReportTitle)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render pdf export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("pr-report-%s.pdf", group.GridID),
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}

func (s *DistributionService) exportDataset(ctx context.Context, gridID string) (*models.DistributionGroup, *export.Dataset, error) {
	if gridID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "grid_id is required")
	}

	group, err := s.repo.FindGroupByGridID(ctx, gridID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "report not found or deleted")
		}
		return nil, nil, appErrors.Internal(err, "failed to load report group")
	}
	if len(group.DistributionData) == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "no distribution data to export")
	}

	dataset := &export.Dataset{Headers: exportFields}
	for _, row := range group.DistributionData {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"exchange_symbol": row.ExchangeSymbol,
			"recipient":       row.Recipient,
			"url":             row.URL,
			"potential_reach": strconv.FormatInt(row.PotentialReach, 10),
			"about":           row.About,
			"value":           row.Value,
			"report_title":    row.ReportTitle,
			"grid_id":         row.GridID,
		})
	}
	return group, dataset, nil
}

// parseUpload reads the delimited upload and returns one column-keyed record
// per data line. Any parse failure aborts before persistence.
func parseUpload(file io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, appErrors.Clone(appErrors.ErrValidation, "empty csv file")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "error parsing csv")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := index[required]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing required column %q", required))
		}
	}

	var records []map[string]string
	for {
		line, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "error parsing csv")
		}

		record := make(map[string]string, len(requiredColumns))
		for _, column := range requiredColumns {
			pos := index[column]
			if pos < len(line) {
				record[column] = line[pos]
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// digitsToInt reduces free text to its digit characters and parses the
// result, defaulting to 0 when nothing remains. "1,200" becomes 1200 and
// "1.2K" collapses to 12.
func digitsToInt(raw string) int64 {
	var builder strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			builder.WriteRune(r)
		}
	}
	cleaned := builder.String()
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// mergeEmails unions normalized new emails into the existing allow-list,
// preserving existing entries and order.
func mergeEmails(existing models.EmailList, incoming []string) models.EmailList {
	merged := make(models.EmailList, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, email := range existing {
		normalized := normalizeEmail(email)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		merged = append(merged, normalized)
	}
	for _, email := range incoming {
		normalized := normalizeEmail(email)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		merged = append(merged, normalized)
	}
	return merged
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailAuthorized(allowList models.EmailList, email string) bool {
	normalized := normalizeEmail(email)
	for _, candidate := range allowList {
		if normalizeEmail(candidate) == normalized {
			return true
		}
	}
	return false
}
