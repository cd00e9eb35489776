package handler

import (
	"net/http"

	service "batch-reconciliation-backend/internal/services/reconciliation"
	"batch-reconciliation-backend/internal/templates"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	service *service.ReconciliationService
}

func NewTemplateHandler(s *service.ReconciliationService) *TemplateHandler {
	return &TemplateHandler{service: s}
}

func (h *TemplateHandler) List(c *gin.Context) {
	list, err := h.service.ListTemplates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	tpl, err := h.service.GetTemplate(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// Save creates the template or replaces the one with the same name.
func (h *TemplateHandler) Save(c *gin.Context) {
	var payload templates.Template
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	tpl, err := h.service.SaveTemplate(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "template saved", "template": tpl})
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := h.service.DeleteTemplate(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "template deleted", "name": name})
}
