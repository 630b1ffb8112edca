package httpapi

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"coffeehouse/internal/events"
	"coffeehouse/internal/repository"
	"coffeehouse/internal/service"
)

// SessionHeader идентификатор пользователя мини-приложения
const SessionHeader = "X-Session-ID"

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

// Services зависимости обработчиков
type Services struct {
	Catalog *service.CatalogService
	Cart    *service.CartService
	Loyalty *service.LoyaltyService
	Orders  *service.OrderService
	Tracker *service.OrderTracker
	Chat    *service.ChatService
	Profile *service.ProfileService
	Events  *events.Bus
}

type Server struct {
	engine  *gin.Engine
	logger  *zap.Logger
	catalog *service.CatalogService
	cart    *service.CartService
	loyalty *service.LoyaltyService
	orders  *service.OrderService
	tracker *service.OrderTracker
	chat    *service.ChatService
	profile *service.ProfileService
	events  *events.Bus
}

func NewServer(svc Services, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())
	s := &Server{
		engine:  r,
		logger:  logger,
		catalog: svc.Catalog,
		cart:    svc.Cart,
		loyalty: svc.Loyalty,
		orders:  svc.Orders,
		tracker: svc.Tracker,
		chat:    svc.Chat,
		profile: svc.Profile,
		events:  svc.Events,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/health", s.health)

	v1 := s.engine.Group("/api/v1")
	v1.Use(sessionScope())
	{
		catalog := v1.Group("/catalog")
		catalog.GET("/categories", s.listCategories)
		catalog.GET("/products", s.listProducts)
		catalog.GET("/products/:id", s.getProduct)

		cart := v1.Group("/cart")
		cart.GET("", s.getCart)
		cart.DELETE("", s.clearCart)
		cart.GET("/quote", s.getQuote)
		cart.POST("/lines", s.addLine)
		cart.POST("/lines/:key/increment", s.incrementLine)
		cart.POST("/lines/:key/decrement", s.decrementLine)
		cart.DELETE("/lines/:key", s.removeLine)

		checkout := v1.Group("/checkout")
		checkout.GET("/draft", s.getDraft)
		checkout.PUT("/draft", s.saveDraft)

		orders := v1.Group("/orders")
		orders.POST("", s.placeOrder)
		orders.GET("", s.listOrders)
		orders.GET("/:id", s.getOrder)
		orders.GET("/:id/events", s.orderEvents)
		orders.GET("/:id/qrcode", s.orderQRCode)

		loyalty := v1.Group("/loyalty")
		loyalty.GET("", s.getLoyalty)
		loyalty.GET("/reconcile", s.reconcileLoyalty)

		chat := v1.Group("/chat")
		chat.GET("/messages", s.listMessages)
		chat.POST("/messages", s.postMessage)
		chat.GET("/quick-messages", s.quickMessages)
		chat.GET("/events", s.chatEvents)

		profile := v1.Group("/profile")
		profile.GET("", s.getProfile)
		profile.PUT("", s.saveProfile)
	}
}

// @Summary Liveness
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sessionScope привязывает запрос к сессии из заголовка X-Session-ID
func sessionScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(SessionHeader))
		if id == "" {
			id = repository.DefaultSession
		}
		if !sessionPattern.MatchString(id) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}
		c.Request = c.Request.WithContext(repository.WithSession(c.Request.Context(), id))
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("session", c.GetHeader(SessionHeader)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}

// writeError ответ с кодом из mapErrorToStatus
func writeError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(status, gin.H{"error": "validation failed", "fields": verr.Fields})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func mapErrorToStatus(err error) int {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrUnavailable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
