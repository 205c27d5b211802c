package domain

import "fmt"

// Table states.
const (
	MesaLibre         = "libre"
	MesaOcupada       = "ocupada"
	MesaReservada     = "reservada"
	MesaMantenimiento = "mantenimiento"
	MesaInactiva      = "inactiva"
)

// manualTransitions lists the administrator-driven moves. Occupied is
// deliberately absent as both source and target: it is only reachable
// through AbrirOrden and only left through Cobrar.
var manualTransitions = map[string]map[string]bool{
	MesaLibre:         {MesaReservada: true, MesaMantenimiento: true, MesaInactiva: true},
	MesaReservada:     {MesaLibre: true, MesaMantenimiento: true, MesaInactiva: true},
	MesaMantenimiento: {MesaLibre: true},
	MesaInactiva:      {MesaLibre: true},
}

// EstadoMesaValido reports whether s is a known table state.
func EstadoMesaValido(s string) bool {
	switch s {
	case MesaLibre, MesaOcupada, MesaReservada, MesaMantenimiento, MesaInactiva:
		return true
	}
	return false
}

// ValidarTransicionManual checks an administrator state change.
// From "ocupada" it always fails with ErrMesaOcupada.
func ValidarTransicionManual(actual, destino string) error {
	if actual == MesaOcupada {
		return ErrMesaOcupada
	}
	if !manualTransitions[actual][destino] {
		return fmt.Errorf("%w: %s -> %s", ErrEstadoMesaInvalido, actual, destino)
	}
	return nil
}

// ValidarAperturaOrden checks that a new order may be opened on a table in
// the given state. Only an empty table accepts one.
func ValidarAperturaOrden(estado string) error {
	if estado != MesaLibre {
		return fmt.Errorf("%w: mesa %s", ErrEstadoMesaInvalido, estado)
	}
	return nil
}

// ValidarCobro checks that a table in the given state can be settled.
func ValidarCobro(estado string) error {
	if estado != MesaOcupada {
		return fmt.Errorf("%w: mesa %s", ErrEstadoMesaInvalido, estado)
	}
	return nil
}
