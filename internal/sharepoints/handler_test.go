package sharepoints

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sharepoint-portal/portal-backend/internal/exceptions"
	"sharepoint-portal/portal-backend/internal/httputil"
	"sharepoint-portal/portal-backend/internal/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter authenticates every request as the principal named by the X-Test-User header.
func newTestRouter(svc Service, principals ...users.Principal) *gin.Engine {
	byID := map[string]users.Principal{}
	for _, p := range principals {
		byID[p.ID.String()] = p
	}
	r := gin.New()
	r.Use(httputil.RequestID())
	r.Use(func(c *gin.Context) {
		if p, ok := byID[c.GetHeader("X-Test-User")]; ok {
			c.Request = c.Request.WithContext(users.WithPrincipal(c.Request.Context(), p))
		}
		c.Next()
	})
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(r http.Handler, method, path string, as users.Principal, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as.ID != uuid.Nil {
		req.Header.Set("X-Test-User", as.ID.String())
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHandlerWorkflowOverHTTP(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f.svc, f.creator, f.m1, f.u1, f.u2)

	deadline := testNow.Add(48 * time.Hour)
	w := do(r, http.MethodPost, "/api/v1/sharepoints", f.creator, map[string]interface{}{
		"title":             "Budget",
		"link":              "https://docs.example.com/budget.xlsx",
		"deadline":          deadline,
		"managersToApprove": []uuid.UUID{f.m1.ID},
		"usersToSign":       []uuid.UUID{f.u1.ID, f.u2.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	id := created["id"].(string)
	assert.Equal(t, "pending_approval", created["status"])
	completion := created["completionData"].(map[string]interface{})
	assert.Equal(t, float64(0), completion["completionPercentage"])

	w = do(r, http.MethodPost, "/api/v1/sharepoints/"+id+"/sign", f.u1, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "MANAGER_APPROVAL_REQUIRED", decode(t, w)["code"])

	w = do(r, http.MethodPost, "/api/v1/sharepoints/"+id+"/approve", f.m1, map[string]interface{}{"approved": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "pending", decode(t, w)["status"])

	w = do(r, http.MethodPost, "/api/v1/sharepoints/"+id+"/sign", f.u1, map[string]string{"signatureNote": "fine"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	completion = decode(t, w)["completionData"].(map[string]interface{})
	assert.Equal(t, float64(75), completion["completionPercentage"])

	w = do(r, http.MethodGet, "/api/v1/sharepoints/"+id+"/can-sign?userId="+f.u2.ID.String(), f.u1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["canSign"])

	w = do(r, http.MethodGet, "/api/v1/sharepoints/my/assigned", f.u2, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["sharePoints"].([]interface{}), 1)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["totalItems"])
	assert.Equal(t, false, pagination["hasNextPage"])

	f.drain(t)
}

func TestHandlerRequiresAuthentication(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f.svc)

	w := do(r, http.MethodGet, "/api/v1/sharepoints", users.Principal{}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerRejectsMalformedInput(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f.svc, f.creator)

	w := do(r, http.MethodGet, "/api/v1/sharepoints/not-a-uuid", f.creator, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/sharepoints?assignedTo=nope", f.creator, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/sharepoints", f.creator, map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "link is required", decode(t, w)["error"])

	w = do(r, http.MethodGet, "/api/v1/sharepoints/"+uuid.NewString(), f.creator, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type MockService struct {
	mock.Mock
	Service
}

func (m *MockService) Delete(ctx context.Context, actor users.Principal, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func TestHandlerHidesInternalErrors(t *testing.T) {
	actor := users.Principal{ID: uuid.New(), Username: "creator"}
	id := uuid.New()
	svc := new(MockService)
	svc.On("Delete", mock.Anything, actor, id).Return(exceptions.Internal("failed to delete sharepoint", assert.AnError))

	r := newTestRouter(svc, actor)
	w := do(r, http.MethodDelete, "/api/v1/sharepoints/"+id.String(), actor, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "internal server error", body["error"])
	assert.Equal(t, w.Header().Get(httputil.RequestIDHeader), body["requestId"])
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	svc.AssertExpectations(t)
}
