package router

import (
	"time"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/config"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/handler"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/infra"
	mw "github.com/ProyectoSpoon/spoon-platform-sub004/internal/middleware"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/repository"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/service"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis/Broker.
// rdb and broker may be nil: caching, async reports and events are then off.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, broker *infra.Broker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(mw.RequestID())
	r.Use(mw.Logger())
	r.Use(mw.Recovery())
	r.Use(mw.CORS())
	r.Use(mw.ErrorHandler())
	r.Use(mw.APIRateLimiter(rdb, 1000)) // per IP per minute

	// ── Infrastructure ───────────────────────────────────────────────────────
	var events service.EventPublisher
	if broker != nil {
		events = broker
	}
	var dispatcher *worker.Dispatcher
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	mesaRepo := repository.NewMesaRepository(db)
	ordenRepo := repository.NewOrdenRepository(db)
	cajaRepo := repository.NewCajaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, rdb, time.Duration(cfg.CatalogoCacheMinutos)*time.Minute)
	gate := service.NewSessionGate(cajaRepo)
	cajaSvc := service.NewCajaService(cajaRepo, dispatcher, events)
	ordenSvc := service.NewOrdenService(ordenRepo, gate, productoSvc, events)
	mesaSvc := service.NewMesaService(service.MesaDeps{
		Mesas:                 mesaRepo,
		Ordenes:               ordenRepo,
		Caja:                  cajaRepo,
		Gate:                  gate,
		Catalogo:              productoSvc,
		Events:                events,
		PermitirCobroSinItems: cfg.PermitirCobroSinItems,
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	mesasH := handler.NewMesasHandler(mesaSvc)
	ordenesH := handler.NewOrdenesHandler(ordenSvc)
	cajaH := handler.NewCajaHandler(cajaSvc, gate)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, broker))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", mw.LoginRateLimiter(rdb), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	todos := mw.RequireRole(mw.RolMesero, mw.RolCajero, mw.RolAdministrador)
	caja := mw.RequireRole(mw.RolCajero, mw.RolAdministrador)
	admin := mw.RequireRole(mw.RolAdministrador)

	v1 := r.Group("/v1", mw.JWTAuth(cfg.JWTSecret))
	{
		mesas := v1.Group("/mesas")
		{
			mesas.GET("", todos, mesasH.Listar)
			mesas.POST("", admin, mesasH.Crear)
			mesas.POST("/configurar", admin, mesasH.Configurar)
			mesas.GET("/:numero", todos, mesasH.Detalle)
			mesas.POST("/:numero/orden", todos, mesasH.AbrirOrden)
			mesas.POST("/:numero/cobrar", caja, mesasH.Cobrar)
			mesas.PATCH("/:numero/estado", admin, mesasH.CambiarEstado)
		}

		ordenes := v1.Group("/ordenes", todos)
		{
			ordenes.GET("/:id", ordenesH.Obtener)
			ordenes.POST("/:id/items", ordenesH.AgregarItems)
		}

		cj := v1.Group("/caja")
		{
			cj.GET("/estado", todos, cajaH.Estado)
			cj.GET("/activa", todos, cajaH.Activa)
			cj.GET("/historial", admin, cajaH.Historial)
			cj.POST("/abrir", caja, cajaH.Abrir)
			cj.POST("/:id/transacciones", caja, cajaH.RegistrarTransaccion)
			cj.POST("/:id/gastos", caja, cajaH.RegistrarGasto)
			cj.POST("/:id/cerrar", caja, cajaH.Cerrar)
			cj.GET("/:id/detalle", caja, cajaH.Detalle)
		}

		v1.GET("/productos", todos, productosH.Listar)
		v1.GET("/productos/:id", todos, productosH.Obtener)
		prods := v1.Group("/productos", admin)
		{
			prods.POST("", productosH.Crear)
			prods.DELETE("/:id", productosH.Desactivar)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
