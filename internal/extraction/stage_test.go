package extraction_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/apflow/invoice-pipeline/internal/adapter"
	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/extraction"
	"github.com/apflow/invoice-pipeline/internal/logger"
	"github.com/apflow/invoice-pipeline/internal/mocks"
	"github.com/apflow/invoice-pipeline/internal/store/schema"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

// testStageMocks contains all the mocks needed for testing the extraction stage
type testStageMocks struct {
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	blobs     *mocks.MockBlobStore
	extractor *mocks.MockExtractor
	publisher *mocks.MockPublisher
	stage     *extraction.Stage
}

func setupTestStage(t *testing.T) *testStageMocks {
	ctrl := gomock.NewController(t)

	tm := &testStageMocks{
		ctrl:      ctrl,
		store:     mocks.NewMockStore(ctrl),
		blobs:     mocks.NewMockBlobStore(ctrl),
		extractor: mocks.NewMockExtractor(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
	}

	tm.stage = extraction.NewStage(tm.store, tm.blobs, tm.extractor, tm.publisher, adapter.NewJSON())

	return tm
}

func documentIngestedPayload(t *testing.T, requestID, blobKey string) []byte {
	t.Helper()
	data, err := json.Marshal(&domain.DocumentIngestedEvent{
		EventID:   "01JF0000000000000000000000",
		RequestID: requestID,
		BlobKey:   blobKey,
	})
	require.NoError(t, err)
	return data
}

func TestExtractionStageCommitsFields(t *testing.T) {
	tm := setupTestStage(t)
	defer tm.ctrl.Finish()

	requestID := "req-1"
	blobKey := "raw/req-1.pdf"
	document := []byte("%PDF-1.4 invoice")
	invoiceDate := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)

	tm.store.EXPECT().MarkProcessing(gomock.Any(), requestID).Return(nil)
	tm.blobs.EXPECT().Get(gomock.Any(), blobKey).Return(document, nil)
	tm.extractor.EXPECT().
		Extract(gomock.Any(), document).
		Return(&domain.ExtractedFields{
			VendorName:    "Acme Corp",
			InvoiceNumber: "INV-1",
			InvoiceDate:   invoiceDate,
			TotalAmount:   42.5,
			PONumbers:     []string{" PO-1 ", "", "PO-2"},
			Confidence:    0.88,
		}, nil)

	tm.store.EXPECT().
		UpsertExtractedInvoice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, extracted *schema.ExtractedInvoice) error {
			assert.Equal(t, requestID, extracted.RequestID)
			assert.Equal(t, "Acme Corp", extracted.VendorName)
			assert.Equal(t, "INV-1", extracted.InvoiceNumber)
			require.NotNil(t, extracted.InvoiceDate)
			assert.Equal(t, invoiceDate, *extracted.InvoiceDate)
			assert.Equal(t, 42.5, extracted.TotalAmount)
			// PO references are committed trimmed, with blanks dropped
			assert.Equal(t, datatypes.JSONSlice[string]{"PO-1", "PO-2"}, extracted.PONumbers)
			assert.Equal(t, 0.88, extracted.Confidence)
			return nil
		})

	tm.publisher.EXPECT().
		PublishFieldsExtracted(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.FieldsExtractedEvent) error {
			assert.Equal(t, requestID, event.RequestID)
			assert.NotEmpty(t, event.EventID)
			return nil
		})

	err := tm.stage.Handle(context.Background(), documentIngestedPayload(t, requestID, blobKey))
	require.NoError(t, err)
}

func TestExtractionStageOmitsZeroInvoiceDate(t *testing.T) {
	tm := setupTestStage(t)
	defer tm.ctrl.Finish()

	requestID := "req-2"

	tm.store.EXPECT().MarkProcessing(gomock.Any(), requestID).Return(nil)
	tm.blobs.EXPECT().Get(gomock.Any(), gomock.Any()).Return([]byte("%PDF-"), nil)
	tm.extractor.EXPECT().
		Extract(gomock.Any(), gomock.Any()).
		Return(&domain.ExtractedFields{VendorName: "Acme Corp", Confidence: 0.5}, nil)

	tm.store.EXPECT().
		UpsertExtractedInvoice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, extracted *schema.ExtractedInvoice) error {
			assert.Nil(t, extracted.InvoiceDate)
			return nil
		})
	tm.publisher.EXPECT().PublishFieldsExtracted(gomock.Any(), gomock.Any()).Return(nil)

	err := tm.stage.Handle(context.Background(), documentIngestedPayload(t, requestID, "raw/req-2.pdf"))
	require.NoError(t, err)
}

func TestExtractionStageUnparseablePayloadIsValidationError(t *testing.T) {
	tm := setupTestStage(t)
	defer tm.ctrl.Finish()

	err := tm.stage.Handle(context.Background(), []byte("not json"))
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestExtractionStageIncompleteEventIsValidationError(t *testing.T) {
	tm := setupTestStage(t)
	defer tm.ctrl.Finish()

	err := tm.stage.Handle(context.Background(), []byte(`{"event_id":"e1","request_id":"req-1"}`))
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestExtractionStageUnknownRequestIsValidationError(t *testing.T) {
	tm := setupTestStage(t)
	defer tm.ctrl.Finish()

	requestID := "req-gone"

	tm.store.EXPECT().
		MarkProcessing(gomock.Any(), requestID).
		Return(domain.ErrRequestNotFound)

	err := tm.stage.Handle(context.Background(), documentIngestedPayload(t, requestID, "raw/req-gone.pdf"))
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestExtractionStageBlobFetchErrorIsTransient(t *testing.T) {
	tm := setupTestStage(t)
	defer tm.ctrl.Finish()

	requestID := "req-3"

	tm.store.EXPECT().MarkProcessing(gomock.Any(), requestID).Return(nil)
	tm.blobs.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("storage unavailable"))

	err := tm.stage.Handle(context.Background(), documentIngestedPayload(t, requestID, "raw/req-3.pdf"))
	require.Error(t, err)
	assert.False(t, domain.IsValidationError(err))
}

func TestExtractionStageExtractorErrorIsTransient(t *testing.T) {
	tm := setupTestStage(t)
	defer tm.ctrl.Finish()

	requestID := "req-4"

	tm.store.EXPECT().MarkProcessing(gomock.Any(), requestID).Return(nil)
	tm.blobs.EXPECT().Get(gomock.Any(), gomock.Any()).Return([]byte("%PDF-"), nil)
	tm.extractor.EXPECT().
		Extract(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("endpoint timeout"))

	err := tm.stage.Handle(context.Background(), documentIngestedPayload(t, requestID, "raw/req-4.pdf"))
	require.Error(t, err)
	assert.False(t, domain.IsValidationError(err))
}

func TestExtractionStagePublishFailureIsTransient(t *testing.T) {
	tm := setupTestStage(t)
	defer tm.ctrl.Finish()

	requestID := "req-5"

	tm.store.EXPECT().MarkProcessing(gomock.Any(), requestID).Return(nil)
	tm.blobs.EXPECT().Get(gomock.Any(), gomock.Any()).Return([]byte("%PDF-"), nil)
	tm.extractor.EXPECT().
		Extract(gomock.Any(), gomock.Any()).
		Return(&domain.ExtractedFields{VendorName: "Acme Corp", Confidence: 0.9}, nil)
	tm.store.EXPECT().UpsertExtractedInvoice(gomock.Any(), gomock.Any()).Return(nil)
	tm.publisher.EXPECT().
		PublishFieldsExtracted(gomock.Any(), gomock.Any()).
		Return(errors.New("broker unavailable"))

	// The fields are committed; redelivery re-runs the idempotent upsert
	err := tm.stage.Handle(context.Background(), documentIngestedPayload(t, requestID, "raw/req-5.pdf"))
	require.Error(t, err)
	assert.False(t, domain.IsValidationError(err))
}
