package handlers

import (
	"finax/internal/logger"
	"finax/internal/service"

	"github.com/gin-gonic/gin"

	_ "finax/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options holds the HTTP-level settings the handlers need.
type Options struct {
	AppName        string
	UploadDir      string
	MaxUploadSize  int64
	PublicURL      string
	AllowedOrigins []string
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	if opts.AppName == "" {
		opts.AppName = "Finax"
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = 5 << 20
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger, h.corsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/", h.root)
	router.GET("/health", h.health)
	router.Static("/uploads", h.opts.UploadDir)

	h.registerAuthRoutes(router)
	h.registerUploadRoutes(router)
	h.registerCategoryRoutes(router)
	h.registerTransactionRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/forgot-password", h.forgotPassword)
		auth.POST("/reset-password", h.resetPassword)

		auth.GET("/profile", h.userIdMiddleware, h.getProfile)
		auth.PUT("/profile", h.userIdMiddleware, h.updateProfile)
		auth.PATCH("/avatar", h.userIdMiddleware, h.updateAvatar)
	}
}

func (h *Handler) registerUploadRoutes(r *gin.Engine) {
	upload := r.Group("/upload", h.userIdMiddleware)
	{
		upload.POST("/avatar", h.uploadAvatar)
	}
}

func (h *Handler) registerCategoryRoutes(r *gin.Engine) {
	categories := r.Group("/categories", h.userIdMiddleware)
	{
		categories.POST("", h.createCategory)
		categories.GET("", h.listCategories)
	}
}

func (h *Handler) registerTransactionRoutes(r *gin.Engine) {
	// the live dashboard also accepts ?token= since browsers cannot set headers on upgrades
	r.GET("/transactions/dashboard/ws", h.wsUserIdMiddleware, h.dashboardStream)

	transactions := r.Group("/transactions", h.userIdMiddleware)
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/dashboard", h.getDashboard)
		transactions.GET("/balance", h.getBalance)
	}
}
