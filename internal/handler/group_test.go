package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/fusion-resource-service/internal/handler"
	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/repository"
	"github.com/maxviazov/fusion-resource-service/internal/service"
)

type stubGroupService struct {
	createErr error
	lastName  string
	lastPage  model.PageParam
	joinErr   error
	lastJoin  struct {
		group int64
		organ string
	}
	organsErr error
}

func (s *stubGroupService) CreateGroup(_ context.Context, name string) (model.Group, error) {
	s.lastName = name
	return model.Group{ID: 7, Name: name}, s.createErr
}
func (s *stubGroupService) ListGroups(_ context.Context, p model.PageParam) (repository.PageResult[model.Group], error) {
	s.lastPage = p
	return repository.PageResult[model.Group]{Items: []model.Group{{ID: 7, Name: "north"}}, Total: 1}, nil
}
func (s *stubGroupService) JoinGroup(_ context.Context, groupID int64, organID string) (model.GroupOrgan, error) {
	s.lastJoin.group, s.lastJoin.organ = groupID, organID
	return model.GroupOrgan{GroupID: groupID, OrganID: organID}, s.joinErr
}
func (s *stubGroupService) ListGroupOrgans(_ context.Context, groupID int64) ([]model.GroupOrgan, error) {
	return []model.GroupOrgan{{GroupID: groupID, OrganID: "org-1"}}, s.organsErr
}

var _ service.GroupService = (*stubGroupService)(nil)

func newGroupRouter(gs service.GroupService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r, stubPinger{}, nil, gs)
	return r
}

func TestGroupHandler_Create(t *testing.T) {
	svc := &stubGroupService{}
	r := newGroupRouter(svc)

	w := doJSON(r, http.MethodPost, handler.APIV1Prefix+"/groups", map[string]string{"name": "north"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "north", svc.lastName)

	svc.createErr = &fakeInvalid{fe: []service.FieldError{{Field: "name", Message: "bad"}}}
	w = doJSON(r, http.MethodPost, handler.APIV1Prefix+"/groups", map[string]string{"name": "n"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGroupHandler_List(t *testing.T) {
	svc := &stubGroupService{}
	w := doJSON(newGroupRouter(svc), http.MethodGet, handler.APIV1Prefix+"/groups?pageNo=1&pageSize=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.PageParam{PageNo: 1, PageSize: 5}, svc.lastPage)

	var body struct {
		Items []model.Group `json:"items"`
		Total int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
}

func TestGroupHandler_Organs(t *testing.T) {
	svc := &stubGroupService{}
	r := newGroupRouter(svc)

	w := doJSON(r, http.MethodPost, handler.APIV1Prefix+"/groups/7/organs", map[string]string{"organId": "org-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(7), svc.lastJoin.group)
	assert.Equal(t, "org-1", svc.lastJoin.organ)

	w = doJSON(r, http.MethodPost, handler.APIV1Prefix+"/groups/abc/organs", map[string]string{"organId": "org-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.joinErr = repository.ErrNotFound
	w = doJSON(r, http.MethodPost, handler.APIV1Prefix+"/groups/8/organs", map[string]string{"organId": "org-1"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, handler.APIV1Prefix+"/groups/7/organs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "org-1")

	w = doJSON(r, http.MethodGet, handler.APIV1Prefix+"/groups/0/organs", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
