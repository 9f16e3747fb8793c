package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guestpostlinks/pr-admin-api/internal/middleware"
	"github.com/guestpostlinks/pr-admin-api/internal/models"
	"github.com/guestpostlinks/pr-admin-api/internal/service"
)

type fakeDistributionStore struct {
	insertedRows []models.Distribution
	createdGroup *models.DistributionGroup
	groupsByGrid map[string]*models.DistributionGroup
	rowsDeleted  int64
	groupDeleted int64
}

func newFakeDistributionStore() *fakeDistributionStore {
	return &fakeDistributionStore{groupsByGrid: map[string]*models.DistributionGroup{}}
}

func (f *fakeDistributionStore) InsertRows(_ context.Context, rows []models.Distribution) error {
	f.insertedRows = rows
	return nil
}

func (f *fakeDistributionStore) FindRowsByGridID(_ context.Context, _ string) ([]models.Distribution, error) {
	return nil, nil
}

func (f *fakeDistributionStore) SoftDeleteRows(_ context.Context, _ string) (int64, error) {
	return f.rowsDeleted, nil
}

func (f *fakeDistributionStore) CreateGroup(_ context.Context, group *models.DistributionGroup) error {
	f.createdGroup = group
	f.groupsByGrid[group.GridID] = group
	return nil
}

func (f *fakeDistributionStore) FindGroupByGridID(_ context.Context, gridID string) (*models.DistributionGroup, error) {
	if group, ok := f.groupsByGrid[gridID]; ok {
		return group, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeDistributionStore) ListGroups(_ context.Context) ([]models.DistributionGroup, error) {
	return nil, nil
}

func (f *fakeDistributionStore) SoftDeleteGroup(_ context.Context, _ string) (int64, error) {
	return f.groupDeleted, nil
}

func (f *fakeDistributionStore) UpdateSharing(_ context.Context, _ string, _ bool, _ models.EmailList) (int64, error) {
	return 1, nil
}

func newTestDistributionHandler(store *fakeDistributionStore) *DistributionHandler {
	svc := service.NewDistributionService(store, nil, nil, nil)
	return NewDistributionHandler(svc, 1024*1024)
}

func testContext(t *testing.T, method, target string, body *bytes.Buffer) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if body == nil {
		body = &bytes.Buffer{}
	}
	c.Request = httptest.NewRequest(method, target, body)
	return c, rec
}

func TestDistributionHandlerUpload(t *testing.T) {
	store := newFakeDistributionStore()
	handler := newTestDistributionHandler(store)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("csv_file", "report.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Exchange Symbol,Recipient,URL,Potential Reach,About,Value\nNASDAQ:ACME,Jane,https://x,\"1,200\",Launch,High\n"))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("report_title", "Q3 Launch"))
	require.NoError(t, writer.Close())

	c, rec := testContext(t, http.MethodPost, "/pr-distributions/uploadPR", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	c.Set(middleware.ContextUserKey, &models.User{ID: "u1", FullName: "Jane Admin", Email: "jane@guestpostlinks.net"})

	handler.Upload(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.insertedRows, 1)
	assert.Equal(t, int64(1200), store.insertedRows[0].PotentialReach)
	assert.Equal(t, "Jane Admin", store.insertedRows[0].UploadedBy.Name)
	require.NotNil(t, store.createdGroup)
	assert.True(t, store.createdGroup.IsPrivate)
}

func TestDistributionHandlerUploadLegacyFieldName(t *testing.T) {
	store := newFakeDistributionStore()
	handler := newTestDistributionHandler(store)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "report.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Exchange Symbol,Recipient,URL,Potential Reach,About,Value\nNASDAQ:ACME,Jane,https://x,500,Launch,High\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	c, rec := testContext(t, http.MethodPost, "/pr-distributions/uploadPR", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	c.Set(middleware.ContextUserKey, &models.User{ID: "u1", FullName: "Jane Admin", Email: "jane@guestpostlinks.net"})

	handler.Upload(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.insertedRows, 1)
}

func TestDistributionHandlerUploadWithoutFile(t *testing.T) {
	handler := newTestDistributionHandler(newFakeDistributionStore())

	c, rec := testContext(t, http.MethodPost, "/pr-distributions/uploadPR", nil)
	c.Request.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDistributionHandlerVerifyURLPublic(t *testing.T) {
	store := newFakeDistributionStore()
	store.groupsByGrid["grid-1"] = &models.DistributionGroup{GridID: "grid-1", ReportTitle: "Q3", IsPrivate: false}
	handler := newTestDistributionHandler(store)

	c, rec := testContext(t, http.MethodGet, "/pr-distributions/verifyPRReportUrl?grid_id=grid-1", nil)

	handler.VerifyURL(c)

	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			AccessGranted bool `json:"access_granted"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.AccessGranted)
}

func TestDistributionHandlerVerifyURLUnknownGrid(t *testing.T) {
	handler := newTestDistributionHandler(newFakeDistributionStore())

	c, rec := testContext(t, http.MethodGet, "/pr-distributions/verifyPRReportUrl?grid_id=missing", nil)

	handler.VerifyURL(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDistributionHandlerGetReportDataUnauthorized(t *testing.T) {
	store := newFakeDistributionStore()
	store.groupsByGrid["grid-1"] = &models.DistributionGroup{
		GridID:       "grid-1",
		IsPrivate:    true,
		SharedEmails: models.EmailList{"a@x.com"},
	}
	handler := newTestDistributionHandler(store)

	payload := bytes.NewBufferString(`{"grid_id":"grid-1","email":"other@x.com"}`)
	c, rec := testContext(t, http.MethodPost, "/pr-distributions/getPRReportData", payload)
	c.Request.Header.Set("Content-Type", "application/json")

	handler.GetReportData(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDistributionHandlerShareRejectsMissingFlag(t *testing.T) {
	handler := newTestDistributionHandler(newFakeDistributionStore())

	payload := bytes.NewBufferString(`{"sharedEmails":["a@x.com"]}`)
	c, rec := testContext(t, http.MethodPut, "/pr-distributions/sharePRReport/grid-1", payload)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "grid_id", Value: "grid-1"}}

	handler.Share(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDistributionHandlerExportCSVAttachment(t *testing.T) {
	store := newFakeDistributionStore()
	store.groupsByGrid["grid-1"] = &models.DistributionGroup{
		GridID:      "grid-1",
		ReportTitle: "Q3",
		DistributionData: models.DistributionRows{
			{GridID: "grid-1", ExchangeSymbol: "NASDAQ:ACME", PotentialReach: 1200, ReportTitle: "Q3"},
		},
	}
	handler := newTestDistributionHandler(store)

	c, rec := testContext(t, http.MethodGet, "/pr-distributions/exportPRReportCsv/grid-1", nil)
	c.Params = gin.Params{{Key: "grid_id", Value: "grid-1"}}

	handler.ExportCSV(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "pr-report-grid-1.csv")
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[1], "NASDAQ:ACME")
}

func TestDistributionHandlerDeleteNotFound(t *testing.T) {
	handler := newTestDistributionHandler(newFakeDistributionStore())

	c, rec := testContext(t, http.MethodDelete, "/pr-distributions/deletePRReport/grid-1", nil)
	c.Params = gin.Params{{Key: "grid_id", Value: "grid-1"}}

	handler.Delete(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
