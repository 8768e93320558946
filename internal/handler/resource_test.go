package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/fusion-resource-service/internal/handler"
	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/repository"
	"github.com/maxviazov/fusion-resource-service/internal/repository/memory"
	"github.com/maxviazov/fusion-resource-service/internal/service"
)

// fakeInvalid replicates aggregated validation error semantics.
type fakeInvalid struct{ fe []service.FieldError }

func (f *fakeInvalid) Error() string                { return service.ErrInvalidInput.Error() }
func (f *fakeInvalid) Unwrap() error                { return service.ErrInvalidInput }
func (f *fakeInvalid) Fields() []service.FieldError { return f.fe }

// stubResourceService records inputs and lets each test pick the outcome.
type stubResourceService struct {
	listCalled bool
	lastParam  model.ResourceParam
	list       struct {
		res repository.PageResult[model.Resource]
		err error
	}
	saved   model.Resource
	saveErr error
	batch   []model.Resource
	getErr  error
	lastID  string
	delErr  error
}

func (s *stubResourceService) SaveResource(_ context.Context, r model.Resource) (model.Resource, error) {
	s.saved = r
	r.ID = 1
	return r, s.saveErr
}
func (s *stubResourceService) BatchSaveResources(_ context.Context, items []model.Resource) ([]model.Resource, error) {
	s.batch = items
	return items, nil
}
func (s *stubResourceService) GetResource(_ context.Context, id string) (model.Resource, error) {
	s.lastID = id
	return model.Resource{ResourceID: id}, s.getErr
}
func (s *stubResourceService) ListResources(_ context.Context, p model.ResourceParam) (repository.PageResult[model.Resource], error) {
	s.listCalled = true
	s.lastParam = p
	return s.list.res, s.list.err
}
func (s *stubResourceService) DeleteResource(_ context.Context, id string) error {
	s.lastID = id
	return s.delErr
}

var _ service.ResourceService = (*stubResourceService)(nil)

func newResourceRouter(rs service.ResourceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r, stubPinger{}, rs, nil)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestResourceHandler_List_NoQueryLeavesFiltersUnset(t *testing.T) {
	svc := &stubResourceService{}
	w := doJSON(newResourceRouter(svc), http.MethodGet, handler.APIV1Prefix+"/resources", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := svc.lastParam
	assert.False(t, p.IsFiltered())
	assert.Nil(t, p.ResourceID)
	assert.Nil(t, p.ResourceType)
	assert.Nil(t, p.GroupList)
	assert.Equal(t, model.PageParam{}, p.PageParam)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []any{}, body["items"])
	assert.EqualValues(t, 1, body["pageNo"])
	assert.EqualValues(t, 10, body["pageSize"])
}

func TestResourceHandler_List_BindsEveryFilter(t *testing.T) {
	svc := &stubResourceService{}
	svc.list.res = repository.PageResult[model.Resource]{
		Items: []model.Resource{{ID: 3, ResourceID: "r-3"}},
		Total: 25,
	}
	path := handler.APIV1Prefix + "/resources?resourceId=r-3&resourceName=sales&resourceType=0" +
		"&organId=org-1&tagName=fin&globalId=g-3&groupList=3&groupList=1,2&pageNo=2&pageSize=20"
	w := doJSON(newResourceRouter(svc), http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p := svc.lastParam
	require.NotNil(t, p.ResourceID)
	assert.Equal(t, "r-3", *p.ResourceID)
	assert.Equal(t, "sales", *p.ResourceName)
	require.NotNil(t, p.ResourceType)
	assert.Equal(t, 0, *p.ResourceType)
	assert.Equal(t, "org-1", *p.OrganID)
	assert.Equal(t, "fin", *p.TagName)
	assert.Equal(t, "g-3", *p.GlobalID)
	assert.Equal(t, []int64{3, 1, 2}, p.GroupList)
	assert.Equal(t, model.PageParam{PageNo: 2, PageSize: 20}, p.PageParam)

	var body struct {
		Items     []model.Resource `json:"items"`
		Total     int              `json:"total"`
		PageCount int              `json:"pageCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Items, 1)
	assert.Equal(t, 25, body.Total)
	assert.Equal(t, 2, body.PageCount)
}

func TestResourceHandler_List_PresentButEmpty(t *testing.T) {
	svc := &stubResourceService{}
	w := doJSON(newResourceRouter(svc), http.MethodGet, handler.APIV1Prefix+"/resources?tagName=&groupList=", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, svc.lastParam.TagName)
	assert.Equal(t, "", *svc.lastParam.TagName)
	assert.NotNil(t, svc.lastParam.GroupList)
	assert.Empty(t, svc.lastParam.GroupList)
}

func TestResourceHandler_List_BadQuery(t *testing.T) {
	cases := []struct {
		name      string
		query     string
		wantField string
	}{
		{"type not int", "resourceType=abc", "resourceType"},
		{"group not int", "groupList=1,x", "groupList"},
		{"page not int", "pageNo=first", "pageNo"},
		{"negative size", "pageSize=-1", "pageSize"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubResourceService{}
			w := doJSON(newResourceRouter(svc), http.MethodGet, handler.APIV1Prefix+"/resources?"+tc.query, nil)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.False(t, svc.listCalled, "service must not be called")

			var payload struct {
				Error       string               `json:"error"`
				FieldErrors []service.FieldError `json:"field_errors"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
			assert.Equal(t, "invalid_input", payload.Error)
			require.NotEmpty(t, payload.FieldErrors)
			assert.Equal(t, tc.wantField, payload.FieldErrors[0].Field)
		})
	}
}

func TestResourceHandler_List_ServiceValidation(t *testing.T) {
	svc := &stubResourceService{}
	svc.list.err = &fakeInvalid{fe: []service.FieldError{{Field: "groupList", Message: "group ids must be > 0"}}}
	w := doJSON(newResourceRouter(svc), http.MethodGet, handler.APIV1Prefix+"/resources?groupList=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResourceHandler_Save(t *testing.T) {
	svc := &stubResourceService{}
	r := newResourceRouter(svc)

	w := doJSON(r, http.MethodPost, handler.APIV1Prefix+"/resources", map[string]any{
		"resourceName": "sales",
		"resourceType": 2,
		"organId":      "org-1",
		"tags":         []string{"fin"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "sales", svc.saved.ResourceName)
	assert.Equal(t, 2, svc.saved.ResourceType)
	assert.Equal(t, []string{"fin"}, svc.saved.Tags)

	req := httptest.NewRequest(http.MethodPost, handler.APIV1Prefix+"/resources", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.saveErr = repository.ErrAlreadyExists
	w = doJSON(r, http.MethodPost, handler.APIV1Prefix+"/resources", map[string]any{"resourceName": "x", "organId": "o"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestResourceHandler_BatchSave(t *testing.T) {
	svc := &stubResourceService{}
	w := doJSON(newResourceRouter(svc), http.MethodPost, handler.APIV1Prefix+"/resources/batch", map[string]any{
		"items": []map[string]any{
			{"resourceName": "a", "organId": "o"},
			{"resourceName": "b", "organId": "o"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, svc.batch, 2)
	assert.Equal(t, "b", svc.batch[1].ResourceName)
}

func TestResourceHandler_GetAndDelete(t *testing.T) {
	svc := &stubResourceService{}
	r := newResourceRouter(svc)

	w := doJSON(r, http.MethodGet, handler.APIV1Prefix+"/resources/r-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r-1", svc.lastID)

	svc.getErr = repository.ErrNotFound
	w = doJSON(r, http.MethodGet, handler.APIV1Prefix+"/resources/r-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodDelete, handler.APIV1Prefix+"/resources/r-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	svc.delErr = repository.ErrNotFound
	w = doJSON(r, http.MethodDelete, handler.APIV1Prefix+"/resources/r-9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResourceHandler_List_HugePageNo(t *testing.T) {
	st := memory.NewStore()
	svc := service.NewResourceService(st.Resources(), st.TxManager(), zerolog.New(io.Discard))
	_, err := svc.SaveResource(context.Background(), model.Resource{ResourceName: "sales", OrganID: "org-1"})
	require.NoError(t, err)

	r := newResourceRouter(svc)
	for _, q := range []string{"pageNo=9223372036854775807", "pageNo=9223372036854775807&pageSize=1", "pageNo=92233720368547758&pageSize=100"} {
		t.Run(q, func(t *testing.T) {
			w := doJSON(r, http.MethodGet, handler.APIV1Prefix+"/resources?"+q, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var body struct {
				Items []model.Resource `json:"items"`
				Total int              `json:"total"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Empty(t, body.Items)
			assert.Equal(t, 1, body.Total)
		})
	}
}

func TestResourceHandler_List_WideResourceType(t *testing.T) {
	svc := &stubResourceService{}
	w := doJSON(newResourceRouter(svc), http.MethodGet, handler.APIV1Prefix+"/resources?resourceType=5000000000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastParam.ResourceType)
	assert.Equal(t, 5000000000, *svc.lastParam.ResourceType)
}
