package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apflow/invoice-pipeline/internal/api/middleware"
	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/ingest"
	"github.com/apflow/invoice-pipeline/internal/review"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// UploadInvoice accepts a PDF document and starts the pipeline
	// POST /api/v1/invoices (multipart form, field "file")
	UploadInvoice(c *gin.Context)

	// GetInvoiceStatus aggregates lifecycle, extracted fields and match result
	// GET /api/v1/invoices/:request_id
	GetInvoiceStatus(c *gin.Context)

	// GetStats counts requests per lifecycle status
	// GET /api/v1/stats
	GetStats(c *gin.Context)

	// GetReviewQueue lists unreviewed requests needing human attention
	// GET /api/v1/review/queue?limit=<limit>&offset=<offset>
	GetReviewQueue(c *gin.Context)

	// ApproveInvoice resolves a NEEDS_REVIEW verdict to AUTO_APPROVED
	// POST /api/v1/review/:request_id/approve
	ApproveInvoice(c *gin.Context)

	// RejectInvoice resolves a NEEDS_REVIEW verdict to REJECTED
	// POST /api/v1/review/:request_id/reject
	RejectInvoice(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// reviewActionRequest is the body of approve/reject actions
type reviewActionRequest struct {
	ReviewedBy  string  `json:"reviewed_by"`
	ReviewNotes *string `json:"review_notes"`
}

// handler implements the Handler interface
type handler struct {
	ingest ingest.Service
	review review.Service
}

// NewHandler creates a new REST API handler
func NewHandler(ingestSvc ingest.Service, reviewSvc review.Service) Handler {
	return &handler{
		ingest: ingestSvc,
		review: reviewSvc,
	}
}

// UploadInvoice accepts a PDF document and starts the pipeline
func (h *handler) UploadInvoice(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "A document is required in the \"file\" form field")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "Failed to read uploaded document")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondInternalError(c, err, "Failed to read uploaded document")
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		if domain.IsValidationError(err) {
			respondValidationError(c, err.Error())
			return
		}
		respondInternalError(c, err, "Failed to accept document",
			zap.String("filename", fileHeader.Filename))
		return
	}

	c.JSON(http.StatusAccepted, result)
}

// GetInvoiceStatus aggregates everything known about one request
func (h *handler) GetInvoiceStatus(c *gin.Context) {
	requestID := c.Param("request_id")
	if _, err := uuid.Parse(requestID); err != nil {
		respondBadRequest(c, "Invalid request ID")
		return
	}

	status, err := h.review.Status(c.Request.Context(), requestID)
	if err != nil {
		if errors.Is(err, domain.ErrRequestNotFound) {
			respondNotFound(c, "Request not found")
			return
		}
		respondInternalError(c, err, "Failed to load request status",
			zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetStats counts requests per lifecycle status
func (h *handler) GetStats(c *gin.Context) {
	stats, err := h.review.Stats(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetReviewQueue lists unreviewed requests needing human attention
func (h *handler) GetReviewQueue(c *gin.Context) {
	limit, err := parseIntQuery(c, "limit", 20)
	if err != nil {
		respondBadRequest(c, "Invalid limit parameter")
		return
	}
	offset, err := parseIntQuery(c, "offset", 0)
	if err != nil {
		respondBadRequest(c, "Invalid offset parameter")
		return
	}

	page, err := h.review.Queue(c.Request.Context(), limit, offset)
	if err != nil {
		respondInternalError(c, err, "Failed to load review queue")
		return
	}

	c.JSON(http.StatusOK, page)
}

// ApproveInvoice resolves a NEEDS_REVIEW verdict to AUTO_APPROVED
func (h *handler) ApproveInvoice(c *gin.Context) {
	requestID, body, ok := h.bindReviewAction(c)
	if !ok {
		return
	}

	err := h.review.Approve(c.Request.Context(), requestID, body.ReviewedBy, body.ReviewNotes)
	if err != nil {
		h.respondReviewError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id":     requestID,
		"matched_status": domain.MatchedAutoApproved,
	})
}

// RejectInvoice resolves a NEEDS_REVIEW verdict to REJECTED
func (h *handler) RejectInvoice(c *gin.Context) {
	requestID, body, ok := h.bindReviewAction(c)
	if !ok {
		return
	}

	var notes string
	if body.ReviewNotes != nil {
		notes = *body.ReviewNotes
	}

	err := h.review.Reject(c.Request.Context(), requestID, body.ReviewedBy, notes)
	if err != nil {
		h.respondReviewError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id":     requestID,
		"matched_status": domain.MatchedRejected,
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// bindReviewAction validates the request id and decodes the action body.
// The reviewer identity falls back to the authenticated subject.
func (h *handler) bindReviewAction(c *gin.Context) (string, *reviewActionRequest, bool) {
	requestID := c.Param("request_id")
	if _, err := uuid.Parse(requestID); err != nil {
		respondBadRequest(c, "Invalid request ID")
		return "", nil, false
	}

	var body reviewActionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return "", nil, false
	}

	if body.ReviewedBy == "" {
		if subject, exists := c.Get(string(middleware.AUTH_SUBJECT_KEY)); exists {
			if s, ok := subject.(string); ok {
				body.ReviewedBy = s
			}
		}
	}

	return requestID, &body, true
}

func (h *handler) respondReviewError(c *gin.Context, requestID string, err error) {
	switch {
	case domain.IsValidationError(err):
		respondValidationError(c, err.Error())
	case errors.Is(err, domain.ErrRequestNotFound):
		respondNotFound(c, "Request not found")
	case errors.Is(err, domain.ErrAlreadyReviewed):
		respondConflict(c, "Request already reviewed")
	case errors.Is(err, domain.ErrNotReviewable):
		respondConflict(c, "Request is not awaiting review")
	default:
		respondInternalError(c, err, "Failed to apply review",
			zap.String("requestID", requestID))
	}
}

func parseIntQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
