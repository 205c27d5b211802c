package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/apierror"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/middleware"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

func init() {
	// report fields by their JSON name so clients can map errors to inputs
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()[strings.Index(fe.Namespace(), ".")+1:]] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// errorKind maps a service error to its HTTP status and stable code.
type errorKind struct {
	err    error
	status int
	code   string
}

var errorKinds = []errorKind{
	{domain.ErrCajaCerrada, http.StatusConflict, "caja_cerrada"},
	{domain.ErrMesaOcupada, http.StatusConflict, "mesa_ocupada"},
	{domain.ErrEstadoMesaInvalido, http.StatusConflict, "estado_mesa_invalido"},
	{domain.ErrOrdenCerrada, http.StatusConflict, "orden_cerrada"},
	{domain.ErrOrdenYaCerrada, http.StatusConflict, "orden_cerrada"},
	{domain.ErrSesionYaAbierta, http.StatusConflict, "sesion_ya_abierta"},
	{domain.ErrSesionNoAbierta, http.StatusConflict, "sesion_no_abierta"},
	{service.ErrMesaDuplicada, http.StatusConflict, "mesa_duplicada"},
	{service.ErrUsuarioDuplicado, http.StatusConflict, "usuario_duplicado"},
	{domain.ErrNoEncontrado, http.StatusNotFound, "no_encontrado"},
	{domain.ErrItemInvalido, http.StatusUnprocessableEntity, "item_invalido"},
	{domain.ErrOrdenVacia, http.StatusUnprocessableEntity, "orden_vacia"},
	{domain.ErrMetodoPagoInvalido, http.StatusUnprocessableEntity, "metodo_pago_invalido"},
	{domain.ErrMontoInvalido, http.StatusUnprocessableEntity, "monto_invalido"},
	{domain.ErrMontoFueraDeRango, http.StatusUnprocessableEntity, "monto_fuera_de_rango"},
	{domain.ErrTipoOrdenInvalido, http.StatusUnprocessableEntity, "tipo_orden_invalido"},
	{service.ErrProductoInactivo, http.StatusUnprocessableEntity, "producto_inactivo"},
	{service.ErrMesaInvalida, http.StatusUnprocessableEntity, "mesa_invalida"},
	{service.ErrCredenciales, http.StatusUnauthorized, "credenciales_invalidas"},
	{domain.ErrPersistencia, http.StatusServiceUnavailable, "persistencia_no_disponible"},
}

// respondError writes the envelope for err. Persistence failures keep their
// 503 envelope without internals; unknown failures are left to
// middleware.ErrorHandler, which answers 500. Both are attached with c.Error
// so they are logged once, with the request id.
func respondError(c *gin.Context, err error) {
	for _, k := range errorKinds {
		if !errors.Is(err, k.err) {
			continue
		}
		msg := err.Error()
		if k.status >= http.StatusInternalServerError {
			_ = c.Error(err)
			msg = k.err.Error()
		}
		c.JSON(k.status, apierror.WithCode(k.code, msg))
		return
	}
	_ = c.Error(err)
}

// identity returns the tenant and user of the authenticated caller.
func identity(c *gin.Context) (restauranteID, usuarioID uuid.UUID) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return uuid.Nil, uuid.Nil
	}
	return claims.RestauranteUUID(), claims.UserUUID()
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

func paramNumeroMesa(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("numero"))
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("Numero de mesa invalido"))
		return 0, false
	}
	return n, true
}
