package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransicionManual_Permitidas(t *testing.T) {
	cases := []struct{ desde, hacia string }{
		{MesaLibre, MesaReservada},
		{MesaReservada, MesaLibre},
		{MesaLibre, MesaMantenimiento},
		{MesaLibre, MesaInactiva},
		{MesaReservada, MesaMantenimiento},
		{MesaReservada, MesaInactiva},
		{MesaMantenimiento, MesaLibre},
		{MesaInactiva, MesaLibre},
	}
	for _, c := range cases {
		assert.NoError(t, ValidarTransicionManual(c.desde, c.hacia), "%s -> %s", c.desde, c.hacia)
	}
}

func TestTransicionManual_DesdeOcupada(t *testing.T) {
	for _, destino := range []string{MesaLibre, MesaReservada, MesaMantenimiento, MesaInactiva} {
		err := ValidarTransicionManual(MesaOcupada, destino)
		assert.ErrorIs(t, err, ErrMesaOcupada)
	}
}

func TestTransicionManual_Invalidas(t *testing.T) {
	cases := []struct{ desde, hacia string }{
		{MesaLibre, MesaOcupada},
		{MesaLibre, MesaLibre},
		{MesaMantenimiento, MesaInactiva},
		{MesaInactiva, MesaReservada},
		{MesaMantenimiento, MesaReservada},
		{MesaLibre, "rota"},
	}
	for _, c := range cases {
		err := ValidarTransicionManual(c.desde, c.hacia)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEstadoMesaInvalido, "%s -> %s", c.desde, c.hacia)
	}
}

func TestAperturaOrden_SoloDesdeLibre(t *testing.T) {
	assert.NoError(t, ValidarAperturaOrden(MesaLibre))
	for _, e := range []string{MesaOcupada, MesaReservada, MesaMantenimiento, MesaInactiva} {
		assert.ErrorIs(t, ValidarAperturaOrden(e), ErrEstadoMesaInvalido)
	}
}

func TestCobro_SoloDesdeOcupada(t *testing.T) {
	assert.NoError(t, ValidarCobro(MesaOcupada))
	assert.ErrorIs(t, ValidarCobro(MesaLibre), ErrEstadoMesaInvalido)
}
