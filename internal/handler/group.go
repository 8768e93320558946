package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/fusion-resource-service/internal/service"
	"github.com/maxviazov/fusion-resource-service/pkg/response"
)

type GroupHandler struct {
	svc service.GroupService
}

func NewGroupHandler(svc service.GroupService) *GroupHandler { return &GroupHandler{svc: svc} }

func (h *GroupHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/groups")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/:group_id/organs", h.listOrgans)
		g.POST("/:group_id/organs", h.join)
	}
}

type createGroupRequest struct {
	Name string `json:"name"`
}

type joinGroupRequest struct {
	OrganID string `json:"organId"`
}

func (h *GroupHandler) create(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, malformedBody)
		return
	}
	g, err := h.svc.CreateGroup(c.Request.Context(), req.Name)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, g)
}

func (h *GroupHandler) list(c *gin.Context) {
	page, ferrs := bindPage(c)
	if err := service.NewInvalidInputError(ferrs); err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListGroups(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, response.NewPage(res, page))
}

func (h *GroupHandler) listOrgans(c *gin.Context) {
	id, err := pathInt64(c, "group_id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	organs, err := h.svc.ListGroupOrgans(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"items": organs})
}

func (h *GroupHandler) join(c *gin.Context) {
	id, err := pathInt64(c, "group_id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req joinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, malformedBody)
		return
	}
	gm, err := h.svc.JoinGroup(c.Request.Context(), id, req.OrganID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gm)
}
