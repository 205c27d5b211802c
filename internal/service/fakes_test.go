package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/model"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory repositories ───────────────────────────────────────────────────
// DB() returns nil on every fake, so services run their transactional blocks
// directly. Conditional writes are atomic under each fake's mutex, which is
// what the races in these tests exercise.

type fakeMesaRepo struct {
	mu    sync.Mutex
	mesas map[uuid.UUID]*model.Mesa
}

var _ repository.MesaRepository = (*fakeMesaRepo)(nil)

func newFakeMesaRepo() *fakeMesaRepo {
	return &fakeMesaRepo{mesas: make(map[uuid.UUID]*model.Mesa)}
}

func (r *fakeMesaRepo) DB() *gorm.DB { return nil }

func (r *fakeMesaRepo) Create(_ context.Context, m *model.Mesa) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.mesas {
		if x.RestauranteID == m.RestauranteID && x.Numero == m.Numero {
			return gorm.ErrDuplicatedKey
		}
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	r.mesas[m.ID] = &cp
	return nil
}

func (r *fakeMesaRepo) CreateBatch(ctx context.Context, mesas []model.Mesa) error {
	for i := range mesas {
		if err := r.Create(ctx, &mesas[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeMesaRepo) List(_ context.Context, restauranteID uuid.UUID) ([]model.Mesa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Mesa
	for _, m := range r.mesas {
		if m.RestauranteID == restauranteID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Numero < out[j].Numero })
	return out, nil
}

func (r *fakeMesaRepo) FindByNumero(_ context.Context, restauranteID uuid.UUID, numero int) (*model.Mesa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.mesas {
		if m.RestauranteID == restauranteID && m.Numero == numero {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMesaRepo) MaxNumero(_ context.Context, restauranteID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, m := range r.mesas {
		if m.RestauranteID == restauranteID && m.Numero > max {
			max = m.Numero
		}
	}
	return max, nil
}

func (r *fakeMesaRepo) OcuparTx(_ *gorm.DB, mesaID, ordenID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mesas[mesaID]
	if !ok || m.Estado != "libre" || m.OrdenActivaID != nil {
		return false, nil
	}
	m.Estado = "ocupada"
	id := ordenID
	m.OrdenActivaID = &id
	return true, nil
}

func (r *fakeMesaRepo) LiberarTx(_ *gorm.DB, mesaID, ordenID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mesas[mesaID]
	if !ok || m.Estado != "ocupada" || m.OrdenActivaID == nil || *m.OrdenActivaID != ordenID {
		return false, nil
	}
	m.Estado = "libre"
	m.OrdenActivaID = nil
	return true, nil
}

func (r *fakeMesaRepo) CambiarEstado(_ context.Context, mesaID uuid.UUID, desde, hacia string, notas *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mesas[mesaID]
	if !ok || m.Estado != desde {
		return false, nil
	}
	m.Estado = hacia
	m.Notas = notas
	return true, nil
}

// get returns a snapshot of a table by number.
func (r *fakeMesaRepo) get(restauranteID uuid.UUID, numero int) model.Mesa {
	m, err := r.FindByNumero(context.Background(), restauranteID, numero)
	if err != nil {
		panic(err)
	}
	return *m
}

type fakeOrdenRepo struct {
	mu      sync.Mutex
	ordenes map[uuid.UUID]*model.Orden
}

var _ repository.OrdenRepository = (*fakeOrdenRepo)(nil)

func newFakeOrdenRepo() *fakeOrdenRepo {
	return &fakeOrdenRepo{ordenes: make(map[uuid.UUID]*model.Orden)}
}

func (r *fakeOrdenRepo) DB() *gorm.DB { return nil }

func copyOrden(o *model.Orden) *model.Orden {
	cp := *o
	cp.Items = append([]model.ItemOrden(nil), o.Items...)
	return &cp
}

func (r *fakeOrdenRepo) CreateTx(_ *gorm.DB, o *model.Orden) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.ordenes {
		if x.RestauranteID == o.RestauranteID && x.NumeroMesa == o.NumeroMesa && x.Estado == "abierta" {
			return gorm.ErrDuplicatedKey
		}
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		o.Items[i].ID = uuid.New()
		o.Items[i].OrdenID = o.ID
	}
	r.ordenes[o.ID] = copyOrden(o)
	return nil
}

func (r *fakeOrdenRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Orden, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.ordenes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyOrden(o), nil
}

func (r *fakeOrdenRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Orden, error) {
	return r.FindByID(context.Background(), id)
}

func (r *fakeOrdenRepo) CreateItemsTx(_ *gorm.DB, items []model.ItemOrden) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range items {
		o, ok := r.ordenes[items[i].OrdenID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		items[i].ID = uuid.New()
		o.Items = append(o.Items, items[i])
	}
	return nil
}

func (r *fakeOrdenRepo) RecalcularTotalTx(_ *gorm.DB, ordenID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.ordenes[ordenID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	var total int64
	for _, it := range o.Items {
		total += it.PrecioTotal
	}
	o.Total = total
	return total, nil
}

func (r *fakeOrdenRepo) CerrarTx(_ *gorm.DB, ordenID uuid.UUID, total int64, closedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.ordenes[ordenID]
	if !ok || o.Estado != "abierta" {
		return false, nil
	}
	o.Estado = "cerrada"
	o.Total = total
	o.ClosedAt = &closedAt
	return true, nil
}

type fakeCajaRepo struct {
	mu            sync.Mutex
	sesiones      map[uuid.UUID]*model.SesionCaja
	transacciones []model.Transaccion
	gastos        []model.Gasto
}

var _ repository.CajaRepository = (*fakeCajaRepo)(nil)

func newFakeCajaRepo() *fakeCajaRepo {
	return &fakeCajaRepo{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *fakeCajaRepo) DB() *gorm.DB { return nil }

// CreateSesion mirrors idx_sesiones_caja_una_abierta.
func (r *fakeCajaRepo) CreateSesion(_ context.Context, s *model.SesionCaja) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.sesiones {
		if x.RestauranteID == s.RestauranteID && x.Estado == "abierta" {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.sesiones[s.ID] = &cp
	return nil
}

func (r *fakeCajaRepo) FindSesionAbierta(_ context.Context, restauranteID uuid.UUID) (*model.SesionCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sesiones {
		if s.RestauranteID == restauranteID && s.Estado == "abierta" {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeCajaRepo) FindSesionForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	return r.FindSesionByID(context.Background(), id)
}

func (r *fakeCajaRepo) CerrarSesionTx(_ *gorm.DB, s *model.SesionCaja) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.sesiones[s.ID]
	if !ok || cur.Estado != "abierta" {
		return false, nil
	}
	cp := *s
	r.sesiones[s.ID] = &cp
	return true, nil
}

func (r *fakeCajaRepo) ListSesiones(_ context.Context, restauranteID uuid.UUID, page, limit int) ([]model.SesionCaja, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.SesionCaja
	for _, s := range r.sesiones {
		if s.RestauranteID == restauranteID {
			all = append(all, *s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OpenedAt.After(all[j].OpenedAt) })
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeCajaRepo) CreateTransaccionTx(_ *gorm.DB, t *model.Transaccion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.transacciones = append(r.transacciones, *t)
	return nil
}

func (r *fakeCajaRepo) CreateGastoTx(_ *gorm.DB, g *model.Gasto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	r.gastos = append(r.gastos, *g)
	return nil
}

func (r *fakeCajaRepo) ListTransacciones(_ context.Context, sesionID uuid.UUID) ([]model.Transaccion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Transaccion
	for _, t := range r.transacciones {
		if t.SesionCajaID == sesionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeCajaRepo) ListGastos(_ context.Context, sesionID uuid.UUID) ([]model.Gasto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Gasto
	for _, g := range r.gastos {
		if g.SesionCajaID == sesionID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeCajaRepo) ListMovimientosTx(_ *gorm.DB, sesionID uuid.UUID) ([]model.Transaccion, []model.Gasto, error) {
	trans, _ := r.ListTransacciones(context.Background(), sesionID)
	gastos, _ := r.ListGastos(context.Background(), sesionID)
	return trans, gastos, nil
}

type fakeProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
	listCalls int
}

var _ repository.ProductoRepository = (*fakeProductoRepo)(nil)

func newFakeProductoRepo() *fakeProductoRepo {
	return &fakeProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *fakeProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *fakeProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductoRepo) List(_ context.Context, restauranteID uuid.UUID, incluirInactivos bool) ([]model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var out []model.Producto
	for _, p := range r.productos {
		if p.RestauranteID == restauranteID && (incluirInactivos || p.Activo) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *fakeProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

type fakeUsuarioRepo struct {
	mu       sync.Mutex
	usuarios map[uuid.UUID]*model.Usuario
}

var _ repository.UsuarioRepository = (*fakeUsuarioRepo)(nil)

func newFakeUsuarioRepo() *fakeUsuarioRepo {
	return &fakeUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *fakeUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.usuarios {
		if x.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.usuarios[u.ID] = &cp
	return nil
}

func (r *fakeUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.usuarios {
		if u.Username == username && u.Activo {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsuarioRepo) ListByRestaurante(_ context.Context, restauranteID uuid.UUID) ([]model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.RestauranteID == restauranteID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUsuarioRepo) SoftDelete(_ context.Context, restauranteID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usuarios[id]
	if !ok || u.RestauranteID != restauranteID {
		return gorm.ErrRecordNotFound
	}
	u.Activo = false
	return nil
}

// ── Event recorder ───────────────────────────────────────────────────────────

type recordedEvent struct {
	key     string
	payload interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{key: key, payload: payload})
	return p.err
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.key
	}
	return out
}
