// Package domain holds the pure rules of the table / order / caja lifecycle:
// legal table transitions, order item aggregation and the closing fold.
// Nothing here touches persistence; services call these functions and write
// the results through the repositories.
package domain

import "errors"

// Expected outcomes of core operations. Callers branch on them with errors.Is;
// none of them is ever corrected silently inside the core.
var (
	ErrCajaCerrada        = errors.New("caja cerrada: no hay una sesion de caja abierta")
	ErrEstadoMesaInvalido = errors.New("el estado actual de la mesa no permite esta operacion")
	ErrMesaOcupada        = errors.New("la mesa esta ocupada: debe cobrarse antes")
	ErrOrdenCerrada       = errors.New("la orden ya no esta abierta")
	ErrOrdenYaCerrada     = errors.New("la orden ya fue cerrada")
	ErrOrdenVacia         = errors.New("la orden no tiene items")
	ErrSesionYaAbierta    = errors.New("ya existe una caja abierta para este restaurante")
	ErrSesionNoAbierta    = errors.New("la sesion de caja no esta abierta")
	ErrPersistencia       = errors.New("servicio de persistencia no disponible")

	ErrNoEncontrado       = errors.New("recurso no encontrado")
	ErrItemInvalido       = errors.New("item invalido: cantidad >= 1 y precio_unitario >= 0")
	ErrMetodoPagoInvalido = errors.New("metodo de pago invalido")
	ErrMontoInvalido      = errors.New("el monto debe estar entre 0 y el maximo permitido")
	ErrMontoFueraDeRango  = errors.New("el monto excede el maximo permitido")
	ErrTipoOrdenInvalido  = errors.New("tipo de orden invalido")
)
