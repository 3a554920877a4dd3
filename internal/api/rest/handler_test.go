package rest_test

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apflow/invoice-pipeline/internal/api/rest"
	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/ingest"
	"github.com/apflow/invoice-pipeline/internal/logger"
	"github.com/apflow/invoice-pipeline/internal/mocks"
	"github.com/apflow/invoice-pipeline/internal/review"
)

const testRequestID = "0d4cba60-64f0-4b97-9388-1a2c1e915c95"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

type testHandlerMocks struct {
	ctrl   *gomock.Controller
	ingest *mocks.MockIngestService
	review *mocks.MockReviewService
	router *gin.Engine
}

func setupTestHandler(t *testing.T) *testHandlerMocks {
	ctrl := gomock.NewController(t)

	tm := &testHandlerMocks{
		ctrl:   ctrl,
		ingest: mocks.NewMockIngestService(ctrl),
		review: mocks.NewMockReviewService(ctrl),
	}

	h := rest.NewHandler(tm.ingest, tm.review)

	tm.router = gin.New()
	tm.router.POST("/api/v1/invoices", h.UploadInvoice)
	tm.router.GET("/api/v1/invoices/:request_id", h.GetInvoiceStatus)
	tm.router.GET("/api/v1/stats", h.GetStats)
	tm.router.GET("/api/v1/review/queue", h.GetReviewQueue)
	tm.router.POST("/api/v1/review/:request_id/approve", h.ApproveInvoice)
	tm.router.POST("/api/v1/review/:request_id/reject", h.RejectInvoice)
	tm.router.GET("/health", h.HealthCheck)

	return tm
}

func multipartUpload(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadInvoiceAccepted(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	document := []byte("%PDF-1.4 test")
	tm.ingest.EXPECT().
		Ingest(gomock.Any(), "invoice.pdf", document).
		Return(&ingest.Result{RequestID: testRequestID, Status: domain.LifecyclePending}, nil)

	body, contentType := multipartUpload(t, "invoice.pdf", document)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), testRequestID)
	assert.Contains(t, w.Body.String(), string(domain.LifecyclePending))
}

func TestUploadInvoiceMissingFile(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadInvoiceValidationError(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	tm.ingest.EXPECT().
		Ingest(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.NewValidationError("unsupported document type %q, only PDF is accepted", "text/plain"))

	body, contentType := multipartUpload(t, "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "only PDF is accepted")
}

func TestUploadInvoiceInternalError(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	tm.ingest.EXPECT().
		Ingest(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("storage unavailable"))

	body, contentType := multipartUpload(t, "invoice.pdf", []byte("%PDF-"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Internal details must not leak to the caller
	assert.NotContains(t, w.Body.String(), "storage unavailable")
}

func TestGetInvoiceStatus(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	tm.review.EXPECT().
		Status(gomock.Any(), testRequestID).
		Return(&review.RequestStatus{
			RequestID:       testRequestID,
			LifecycleStatus: domain.LifecycleProcessing,
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+testRequestID, nil)
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(domain.LifecycleProcessing))
}

func TestGetInvoiceStatusInvalidID(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/not-a-uuid", nil)
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetInvoiceStatusNotFound(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	tm.review.EXPECT().
		Status(gomock.Any(), testRequestID).
		Return(nil, domain.ErrRequestNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+testRequestID, nil)
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetStats(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	tm.review.EXPECT().
		Stats(gomock.Any()).
		Return(&review.Stats{
			Total: 5,
			ByStatus: map[domain.LifecycleStatus]int64{
				domain.LifecycleCompleted: 5,
			},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":5`)
}

func TestGetReviewQueuePassesPagination(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	tm.review.EXPECT().
		Queue(gomock.Any(), 50, 10).
		Return(&review.QueuePage{Limit: 50, Offset: 10}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/review/queue?limit=50&offset=10", nil)
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetReviewQueueBadLimit(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/review/queue?limit=abc", nil)
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApproveInvoice(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	tm.review.EXPECT().
		Approve(gomock.Any(), testRequestID, "ap-clerk@example.com", gomock.Nil()).
		Return(nil)

	body := `{"reviewed_by":"ap-clerk@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/review/"+testRequestID+"/approve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(domain.MatchedAutoApproved))
}

func TestApproveInvoiceAlreadyReviewed(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	tm.review.EXPECT().
		Approve(gomock.Any(), testRequestID, gomock.Any(), gomock.Any()).
		Return(domain.ErrAlreadyReviewed)

	body := `{"reviewed_by":"ap-clerk@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/review/"+testRequestID+"/approve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestApproveInvoiceNotReviewable(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	tm.review.EXPECT().
		Approve(gomock.Any(), testRequestID, gomock.Any(), gomock.Any()).
		Return(domain.ErrNotReviewable)

	body := `{"reviewed_by":"ap-clerk@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/review/"+testRequestID+"/approve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRejectInvoice(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	tm.review.EXPECT().
		Reject(gomock.Any(), testRequestID, "ap-clerk@example.com", "duplicate invoice").
		Return(nil)

	body := `{"reviewed_by":"ap-clerk@example.com","review_notes":"duplicate invoice"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/review/"+testRequestID+"/reject", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(domain.MatchedRejected))
}

func TestRejectInvoiceMissingNotes(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	tm.review.EXPECT().
		Reject(gomock.Any(), testRequestID, "ap-clerk@example.com", "").
		Return(domain.NewValidationError("review notes are required when rejecting"))

	body := `{"reviewed_by":"ap-clerk@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/review/"+testRequestID+"/reject", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "review notes are required")
}

func TestRejectInvoiceInvalidBody(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/review/"+testRequestID+"/reject", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthCheck(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
