package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-quota-availability/internal/handler"
	"go-quota-availability/internal/model"
	apperrors "go-quota-availability/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type quotaHandlerFixture struct {
	service *QuotaServiceMock
	router  *gin.Engine
}

func newQuotaHandlerFixture() *quotaHandlerFixture {
	gin.SetMode(gin.TestMode)
	f := &quotaHandlerFixture{service: new(QuotaServiceMock)}
	f.router = gin.New()
	handler.NewQuotaHandler(f.service).RegisterRoutes(f.router)
	return f
}

func (f *quotaHandlerFixture) doJSON(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	return w
}

func TestCreateQuota_OK(t *testing.T) {
	f := newQuotaHandlerFixture()
	created := &model.Quota{ID: 1, QuotaID: uuid.New(), EventID: 1, Name: "GA", Size: intPtr(100)}

	f.service.On("Create", mock.Anything, mock.MatchedBy(func(q *model.Quota) bool {
		return q.EventID == 1 && q.Name == "GA" && q.Size != nil && *q.Size == 100
	})).Return(created, nil)

	w := f.doJSON(http.MethodPost, "/api/v1/quotas", handler.CreateQuotaRequest{
		EventID: 1,
		Name:    "GA",
		Size:    intPtr(100),
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp model.Quota
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.QuotaID, resp.QuotaID)
}

func TestCreateQuota_UnlimitedSize(t *testing.T) {
	f := newQuotaHandlerFixture()
	created := &model.Quota{ID: 1, QuotaID: uuid.New(), EventID: 1, Name: "Unlimited"}

	f.service.On("Create", mock.Anything, mock.MatchedBy(func(q *model.Quota) bool {
		return q.Size == nil
	})).Return(created, nil)

	w := f.doJSON(http.MethodPost, "/api/v1/quotas", handler.CreateQuotaRequest{
		EventID: 1,
		Name:    "Unlimited",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateQuota_NegativeSize(t *testing.T) {
	f := newQuotaHandlerFixture()

	w := f.doJSON(http.MethodPost, "/api/v1/quotas", handler.CreateQuotaRequest{
		EventID: 1,
		Name:    "GA",
		Size:    intPtr(-1),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.service.AssertNotCalled(t, "Create")
}

func TestCreateQuota_MissingName(t *testing.T) {
	f := newQuotaHandlerFixture()

	w := f.doJSON(http.MethodPost, "/api/v1/quotas", map[string]interface{}{"event_id": 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCloseAndReopenQuota(t *testing.T) {
	f := newQuotaHandlerFixture()
	quotaID := uuid.New()

	f.service.On("CloseByQuotaID", mock.Anything, quotaID).Return(nil).Once()
	f.service.On("ReopenByQuotaID", mock.Anything, quotaID).Return(nil).Once()

	w := f.doJSON(http.MethodPost, "/api/v1/quotas/"+quotaID.String()+"/close", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.doJSON(http.MethodPost, "/api/v1/quotas/"+quotaID.String()+"/reopen", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	f.service.AssertExpectations(t)
}

func TestGetQuota_NotFound(t *testing.T) {
	f := newQuotaHandlerFixture()
	quotaID := uuid.New()

	f.service.On("GetByQuotaID", mock.Anything, quotaID).Return(nil, apperrors.ErrQuotaNotFound)

	w := f.doJSON(http.MethodGet, "/api/v1/quotas/"+quotaID.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
