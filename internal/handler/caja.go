package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/dto"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct {
	svc  service.CajaService
	gate service.SessionGate
}

func NewCajaHandler(svc service.CajaService, gate service.SessionGate) *CajaHandler {
	return &CajaHandler{svc: svc, gate: gate}
}

// Estado godoc
// @Summary Indica si hay una caja abierta (los dispositivos lo consultan antes de tomar pedidos)
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.EstadoCajaResponse
// @Router /v1/caja/estado [get]
func (h *CajaHandler) Estado(c *gin.Context) {
	rid, _ := identity(c)
	sesion, err := h.gate.Exigir(c.Request.Context(), rid)
	if err != nil {
		if errors.Is(err, domain.ErrCajaCerrada) {
			c.JSON(http.StatusOK, dto.EstadoCajaResponse{Abierta: false})
			return
		}
		respondError(c, err)
		return
	}
	id := sesion.ID.String()
	c.JSON(http.StatusOK, dto.EstadoCajaResponse{Abierta: true, SesionID: &id})
}

// Abrir godoc
// @Summary Abre una nueva sesion de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.SesionCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rid, uid := identity(c)
	resp, err := h.svc.Abrir(c.Request.Context(), rid, uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Activa godoc
// @Summary Sesion de caja abierta del restaurante
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SesionCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/activa [get]
func (h *CajaHandler) Activa(c *gin.Context) {
	rid, _ := identity(c)
	resp, err := h.svc.Activa(c.Request.Context(), rid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary Historial paginado de sesiones de caja
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param page query int false "Pagina" default(1)
// @Param limit query int false "Tamano de pagina" default(20)
// @Success 200 {object} dto.HistorialCajaResponse
// @Router /v1/caja/historial [get]
func (h *CajaHandler) Historial(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	rid, _ := identity(c)
	resp, err := h.svc.Historial(c.Request.Context(), rid, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarTransaccion godoc
// @Summary Registra una venta que no es de mesa (para llevar, domicilio)
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Param body body dto.RegistrarTransaccionRequest true "Transaccion"
// @Success 201 {object} dto.TransaccionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/{id}/transacciones [post]
func (h *CajaHandler) RegistrarTransaccion(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RegistrarTransaccionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rid, uid := identity(c)
	resp, err := h.svc.RegistrarTransaccion(c.Request.Context(), rid, id, uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegistrarGasto godoc
// @Summary Registra un gasto en efectivo
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Param body body dto.RegistrarGastoRequest true "Gasto"
// @Success 201 {object} dto.GastoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/{id}/gastos [post]
func (h *CajaHandler) RegistrarGasto(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RegistrarGastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rid, _ := identity(c)
	resp, err := h.svc.RegistrarGasto(c.Request.Context(), rid, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cerrar godoc
// @Summary Cierra la sesion de caja y devuelve el cierre
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Param body body dto.CerrarCajaRequest false "Notas y efectivo contado"
// @Success 200 {object} dto.CerrarCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/{id}/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CerrarCajaRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	rid, uid := identity(c)
	resp, err := h.svc.Cerrar(c.Request.Context(), rid, id, uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Detalle godoc
// @Summary Detalle de una sesion: cierre recalculado, transacciones y gastos
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Success 200 {object} dto.DetalleCajaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/{id}/detalle [get]
func (h *CajaHandler) Detalle(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	rid, _ := identity(c)
	resp, err := h.svc.Detalle(c.Request.Context(), rid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
