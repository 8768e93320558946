package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/service"
	"github.com/maxviazov/fusion-resource-service/pkg/response"
	"github.com/rs/zerolog/log"
)

type ResourceHandler struct {
	svc service.ResourceService
}

func NewResourceHandler(svc service.ResourceService) *ResourceHandler {
	return &ResourceHandler{svc: svc}
}

func (h *ResourceHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/resources")
	{
		g.GET("", h.list)
		g.POST("", h.save)
		g.POST("/batch", h.batchSave)
		g.GET("/:resource_id", h.get)
		g.DELETE("/:resource_id", h.delete)
	}
}

type resourceRequest struct {
	ResourceID   string   `json:"resourceId"`
	ResourceName string   `json:"resourceName"`
	ResourceType int      `json:"resourceType"`
	ResourceDesc string   `json:"resourceDesc"`
	OrganID      string   `json:"organId"`
	GlobalID     string   `json:"globalId"`
	Tags         []string `json:"tags"`
	FileRows     int64    `json:"fileRows"`
	FileColumns  int      `json:"fileColumns"`
}

func (req resourceRequest) toModel() model.Resource {
	return model.Resource{
		ResourceID:   req.ResourceID,
		ResourceName: req.ResourceName,
		ResourceType: req.ResourceType,
		ResourceDesc: req.ResourceDesc,
		OrganID:      req.OrganID,
		GlobalID:     req.GlobalID,
		Tags:         req.Tags,
		FileRows:     req.FileRows,
		FileColumns:  req.FileColumns,
	}
}

type batchRequest struct {
	Items []resourceRequest `json:"items"`
}

var malformedBody = service.NewInvalidInputError([]service.FieldError{{Field: "body", Message: "malformed JSON"}})

func (h *ResourceHandler) list(c *gin.Context) {
	start := time.Now()
	param, err := bindResourceParam(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()

	res, err := h.svc.ListResources(ctx, param)

	logger := log.With().
		Str("path", c.Request.URL.Path).
		Str("query", c.Request.URL.RawQuery).
		Dur("duration", time.Since(start)).
		Logger()

	if err != nil {
		status, _ := response.MapError(err)
		logger.Error().Err(err).Int("status", status).Msg("failed to list resources")
		response.WriteError(c, err)
		return
	}
	logger.Debug().Int("total", res.Total).Msg("resources listed")
	response.WriteData(c, http.StatusOK, response.NewPage(res, param.PageParam))
}

func (h *ResourceHandler) save(c *gin.Context) {
	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, malformedBody)
		return
	}
	out, err := h.svc.SaveResource(c.Request.Context(), req.toModel())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, out)
}

func (h *ResourceHandler) batchSave(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, malformedBody)
		return
	}
	items := make([]model.Resource, len(req.Items))
	for i, it := range req.Items {
		items[i] = it.toModel()
	}
	out, err := h.svc.BatchSaveResources(c.Request.Context(), items)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, gin.H{"items": out})
}

func (h *ResourceHandler) get(c *gin.Context) {
	out, err := h.svc.GetResource(c.Request.Context(), c.Param("resource_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, out)
}

func (h *ResourceHandler) delete(c *gin.Context) {
	if err := h.svc.DeleteResource(c.Request.Context(), c.Param("resource_id")); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
