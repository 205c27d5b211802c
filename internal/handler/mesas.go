package handler

import (
	"net/http"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/dto"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/service"

	"github.com/gin-gonic/gin"
)

type MesasHandler struct{ svc service.MesaService }

func NewMesasHandler(svc service.MesaService) *MesasHandler { return &MesasHandler{svc: svc} }

// Listar godoc
// @Summary Lista las mesas del restaurante con su estado
// @Tags mesas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.MesaResponse
// @Router /v1/mesas [get]
func (h *MesasHandler) Listar(c *gin.Context) {
	rid, _ := identity(c)
	resp, err := h.svc.Listar(c.Request.Context(), rid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Detalle godoc
// @Summary Detalle de una mesa con su orden activa
// @Tags mesas
// @Produce json
// @Security BearerAuth
// @Param numero path int true "Numero de mesa"
// @Success 200 {object} dto.MesaDetalleResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/mesas/{numero} [get]
func (h *MesasHandler) Detalle(c *gin.Context) {
	numero, ok := paramNumeroMesa(c)
	if !ok {
		return
	}
	rid, _ := identity(c)
	resp, err := h.svc.Detalle(c.Request.Context(), rid, numero)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Crear godoc
// @Summary Crea una mesa
// @Tags mesas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearMesaRequest true "Mesa"
// @Success 201 {object} dto.MesaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/mesas [post]
func (h *MesasHandler) Crear(c *gin.Context) {
	var req dto.CrearMesaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rid, _ := identity(c)
	resp, err := h.svc.Crear(c.Request.Context(), rid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Configurar godoc
// @Summary Configuracion inicial de mesas por zona
// @Tags mesas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ConfigurarMesasRequest true "Zonas"
// @Success 201 {array} dto.MesaResponse
// @Router /v1/mesas/configurar [post]
func (h *MesasHandler) Configurar(c *gin.Context) {
	var req dto.ConfigurarMesasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rid, _ := identity(c)
	resp, err := h.svc.Configurar(c.Request.Context(), rid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AbrirOrden godoc
// @Summary Abre una orden en una mesa libre
// @Description Requiere caja abierta. Falla con 409 si la mesa no esta libre.
// @Tags mesas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param numero path int true "Numero de mesa"
// @Param body body dto.AbrirOrdenRequest false "Items iniciales"
// @Success 201 {object} dto.MesaDetalleResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/mesas/{numero}/orden [post]
func (h *MesasHandler) AbrirOrden(c *gin.Context) {
	numero, ok := paramNumeroMesa(c)
	if !ok {
		return
	}
	var req dto.AbrirOrdenRequest
	// body is optional
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	rid, uid := identity(c)
	resp, err := h.svc.AbrirOrden(c.Request.Context(), rid, numero, uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cobrar godoc
// @Summary Cobra la orden activa de una mesa y la libera
// @Tags mesas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param numero path int true "Numero de mesa"
// @Param body body dto.CobrarMesaRequest true "Metodo de pago"
// @Success 200 {object} dto.CobroResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/mesas/{numero}/cobrar [post]
func (h *MesasHandler) Cobrar(c *gin.Context) {
	numero, ok := paramNumeroMesa(c)
	if !ok {
		return
	}
	var req dto.CobrarMesaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rid, uid := identity(c)
	resp, err := h.svc.Cobrar(c.Request.Context(), rid, numero, uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarEstado godoc
// @Summary Cambio manual de estado (reservada, mantenimiento, inactiva, libre)
// @Tags mesas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param numero path int true "Numero de mesa"
// @Param body body dto.CambiarEstadoMesaRequest true "Estado destino"
// @Success 200 {object} dto.MesaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/mesas/{numero}/estado [patch]
func (h *MesasHandler) CambiarEstado(c *gin.Context) {
	numero, ok := paramNumeroMesa(c)
	if !ok {
		return
	}
	var req dto.CambiarEstadoMesaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rid, _ := identity(c)
	resp, err := h.svc.CambiarEstado(c.Request.Context(), rid, numero, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
