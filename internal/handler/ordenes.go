package handler

import (
	"net/http"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/dto"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdenesHandler struct{ svc service.OrdenService }

func NewOrdenesHandler(svc service.OrdenService) *OrdenesHandler { return &OrdenesHandler{svc: svc} }

// Obtener godoc
// @Summary Obtiene una orden con sus items
// @Tags ordenes
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de orden"
// @Success 200 {object} dto.OrdenResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/ordenes/{id} [get]
func (h *OrdenesHandler) Obtener(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	rid, _ := identity(c)
	resp, err := h.svc.Obtener(c.Request.Context(), rid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarItems godoc
// @Summary Agrega items a una orden abierta
// @Tags ordenes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de orden"
// @Param body body dto.AgregarItemsRequest true "Items"
// @Success 200 {object} dto.OrdenResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/ordenes/{id}/items [post]
func (h *OrdenesHandler) AgregarItems(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AgregarItemsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rid, _ := identity(c)
	resp, err := h.svc.AgregarItems(c.Request.Context(), rid, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
