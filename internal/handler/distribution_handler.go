package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
	"github.com/guestpostlinks/pr-admin-api/internal/service"
	appErrors "github.com/guestpostlinks/pr-admin-api/pkg/errors"
	"github.com/guestpostlinks/pr-admin-api/pkg/response"
)

// DistributionHandler wires HTTP endpoints to the distribution service.
type DistributionHandler struct {
	service       *service.DistributionService
	maxUploadSize int64
}

// NewDistributionHandler creates a new handler.
func NewDistributionHandler(svc *service.DistributionService, maxUploadSize int64) *DistributionHandler {
	return &DistributionHandler{service: svc, maxUploadSize: maxUploadSize}
}

type verifyURLRequest struct {
	GridID string `json:"grid_id" binding:"required"`
	Email  string `json:"email"`
}

// Upload godoc
// @Summary Upload report batch
// @Description Ingest a delimited report file into a new batch
// @Tags Distributions
// @Accept multipart/form-data
// @Produce json
// @Param csv_file formData file true "Report file"
// @Param report_title formData string false "Report title, defaults to the file name"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /pr-distributions/uploadPR [post]
func (h *DistributionHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("csv_file")
	if err != nil {
		// Older admin builds posted the file under "file".
		fileHeader, err = c.FormFile("file")
	}
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "no file uploaded"))
		return
	}
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes", h.maxUploadSize)))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to open uploaded file"))
		return
	}
	defer file.Close()

	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	uploader := models.Uploader{ID: user.ID, Name: user.FullName, Email: user.Email}

	result, err := h.service.Upload(c.Request.Context(), file, fileHeader.Filename, c.PostForm("report_title"), uploader)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetByBatchID godoc
// @Summary Get batch rows
// @Description Return all live rows of a batch with aggregates
// @Tags Distributions
// @Produce json
// @Param batch_id path string true "Batch id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pr-distributions/getPRReportByBatchId/{batch_id} [get]
func (h *DistributionHandler) GetByBatchID(c *gin.Context) {
	report, err := h.service.GetByBatchID(c.Request.Context(), c.Param("batch_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil)
}

// GetGroupByGridID godoc
// @Summary Get batch group
// @Tags Distributions
// @Produce json
// @Param grid_id path string true "Batch id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pr-distributions/getPRReportGroupByGridId/{grid_id} [get]
func (h *DistributionHandler) GetGroupByGridID(c *gin.Context) {
	group, err := h.service.GetGroupByGridID(c.Request.Context(), c.Param("grid_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, group, nil)
}

// ListGroups godoc
// @Summary List batch groups
// @Tags Distributions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /pr-distributions/getPRReportGroups [get]
func (h *DistributionHandler) ListGroups(c *gin.Context) {
	groups, err := h.service.ListGroups(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, groups, nil)
}

// Delete godoc
// @Summary Delete batch
// @Description Soft-delete the row set and the group record
// @Tags Distributions
// @Produce json
// @Param grid_id path string true "Batch id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pr-distributions/deletePRReport/{grid_id} [delete]
func (h *DistributionHandler) Delete(c *gin.Context) {
	result, err := h.service.Delete(c.Request.Context(), c.Param("grid_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Share godoc
// @Summary Update batch sharing
// @Description Set privacy and merge emails into the allow-list
// @Tags Distributions
// @Accept json
// @Produce json
// @Param grid_id path string true "Batch id"
// @Param payload body service.ShareRequest true "Sharing payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /pr-distributions/sharePRReport/{grid_id} [put]
func (h *DistributionHandler) Share(c *gin.Context) {
	var req service.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sharing payload"))
		return
	}

	result, err := h.service.Share(c.Request.Context(), c.Param("grid_id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// VerifyURL godoc
// @Summary Verify share link
// @Description Check whether the holder of a share link may view a batch
// @Tags Distributions
// @Produce json
// @Param grid_id query string true "Batch grid id"
// @Param email query string false "Viewer email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pr-distributions/verifyPRReportUrl [get]
func (h *DistributionHandler) VerifyURL(c *gin.Context) {
	gridID := c.Query("grid_id")
	if gridID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "grid_id is required"))
		return
	}

	result, err := h.service.VerifyURL(c.Request.Context(), gridID, c.Query("email"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// GetReportData godoc
// @Summary Get shared report data
// @Description Serve the batch's embedded row copy after a privacy check
// @Tags Distributions
// @Accept json
// @Produce json
// @Param payload body verifyURLRequest true "Access payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /pr-distributions/getPRReportData [post]
func (h *DistributionHandler) GetReportData(c *gin.Context) {
	var req verifyURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "grid_id is required"))
		return
	}

	data, err := h.service.GetReportData(c.Request.Context(), req.GridID, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, data, nil)
}

// ExportCSV godoc
// @Summary Export batch as CSV
// @Tags Distributions
// @Produce text/csv
// @Param grid_id path string true "Batch id"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /pr-distributions/exportPRReportCsv/{grid_id} [get]
func (h *DistributionHandler) ExportCSV(c *gin.Context) {
	h.export(c, h.service.ExportCSV)
}

// ExportPDF godoc
// @Summary Export batch as PDF
// @Tags Distributions
// @Produce application/pdf
// @Param grid_id path string true "Batch id"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /pr-distributions/exportPRReportPdf/{grid_id} [get]
func (h *DistributionHandler) ExportPDF(c *gin.Context) {
	h.export(c, h.service.ExportPDF)
}

func (h *DistributionHandler) export(c *gin.Context, render func(ctx context.Context, gridID string) (*service.ExportFile, error)) {
	file, err := render(c.Request.Context(), c.Param("grid_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
