package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/config"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBroker = errors.New("connection refused")

func TestCircuitBreaker_AbreYSeRecupera(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, OpenTimeout: 10 * time.Second})
	cb.now = func() time.Time { return clock }

	fail := func() error { return errBroker }
	ok := func() error { return nil }

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(fail), errBroker)
	}
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	clock = clock.Add(11 * time.Second)
	assert.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_FalloEnHalfOpenReabre(t *testing.T) {
	clock := time.Now()
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second})
	cb.now = func() time.Time { return clock }

	_ = cb.Execute(func() error { return errBroker })
	assert.Equal(t, CBOpen, cb.State())

	clock = clock.Add(2 * time.Second)
	assert.Equal(t, CBHalfOpen, cb.State())
	_ = cb.Execute(func() error { return errBroker })
	assert.Equal(t, CBOpen, cb.State())
	assert.Equal(t, "open", cb.State().String())
}

func TestCircuitBreaker_ExitoReiniciaFallos(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})
	_ = cb.Execute(func() error { return errBroker })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return errBroker })
	assert.Equal(t, CBClosed, cb.State())
}

func TestGenerateCierrePDF(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reportes")
	closed := time.Now()
	contado := int64(218000)
	notas := "proveedor de hielo"
	sesion := &model.SesionCaja{
		ID:              uuid.New(),
		RestauranteID:   uuid.New(),
		MontoInicial:    50000,
		Estado:          domain.SesionCerrada,
		OpenedAt:        closed.Add(-8 * time.Hour),
		ClosedAt:        &closed,
		EfectivoContado: &contado,
	}
	trans := []model.Transaccion{
		{ID: uuid.New(), MetodoPago: domain.MetodoEfectivo, TipoOrden: domain.TipoOrdenMesa, Total: 200000, ProcessedAt: closed},
		{ID: uuid.New(), MetodoPago: domain.MetodoTarjeta, TipoOrden: domain.TipoOrdenMesa, Total: 100000, ProcessedAt: closed},
	}
	gastos := []model.Gasto{{ID: uuid.New(), Categoria: "insumos", Monto: 30000, Notas: &notas, RegisteredAt: closed}}

	cierre, err := domain.CalcularCierre(sesion.MontoInicial, trans, gastos)
	require.NoError(t, err)

	path, err := GenerateCierrePDF(ReporteCierre{
		Sesion:        sesion,
		Cierre:        cierre,
		Transacciones: trans,
		Gastos:        gastos,
	}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cierre_"+sesion.ID.String()+".pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 500)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestGenerateCierrePDF_SinSesion(t *testing.T) {
	_, err := GenerateCierrePDF(ReporteCierre{}, t.TempDir())
	assert.Error(t, err)
}

func TestMailer_Configured(t *testing.T) {
	assert.False(t, NewMailer(&config.Config{}).Configured())
	assert.True(t, NewMailer(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587}).Configured())
	var m *Mailer
	assert.False(t, m.Configured())
}
