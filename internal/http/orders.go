package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coffeehouse/internal/repository"
	"coffeehouse/internal/service"
)

// @Summary Place order from the cart
// @Tags orders
// @Accept json
// @Produce json
// @Param input body service.PlaceOrderRequest true "Checkout form"
// @Success 201 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]any
// @Router /orders [post]
func (s *Server) placeOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ctx := c.Request.Context()
	o, err := s.orders.PlaceOrder(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.tracker.Track(ctx, o.ID); err != nil {
		s.logger.Error("start order tracking", zap.String("order_id", o.ID), zap.Error(err))
	}
	c.JSON(http.StatusCreated, o)
}

// @Summary List orders, newest first
// @Tags orders
// @Produce json
// @Success 200 {array} domain.Order
// @Router /orders [get]
func (s *Server) listOrders(c *gin.Context) {
	list, err := s.orders.ListOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get order by id, resumes status simulation
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	ctx := c.Request.Context()
	o, err := s.orders.FindOrder(ctx, c.Param("id"))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	if err := s.tracker.Track(ctx, o.ID); err != nil {
		s.logger.Error("start order tracking", zap.String("order_id", o.ID), zap.Error(err))
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Stream order status changes (server-sent events)
// @Tags orders
// @Produce text/event-stream
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/events [get]
func (s *Server) orderEvents(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	updates, cancel := s.events.OrderUpdates(repository.SessionFromContext(ctx), id)
	defer cancel()

	o, err := s.orders.FindOrder(ctx, id)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.SSEvent("status", o)
	c.Writer.Flush()
	if o.Status.Terminal() {
		return
	}
	if err := s.tracker.Track(ctx, o.ID); err != nil {
		s.logger.Error("start order tracking", zap.String("order_id", o.ID), zap.Error(err))
	}
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case u, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("status", u)
			return !u.Status.Terminal()
		}
	})
}

// @Summary Order pickup QR code
// @Tags orders
// @Produce png
// @Param id path string true "Order ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/qrcode [get]
func (s *Server) orderQRCode(c *gin.Context) {
	png, err := s.orders.QRCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// writeOrderError неизвестный заказ отправляет клиента на главную
func writeOrderError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found", "redirect": "/"})
		return
	}
	writeError(c, err)
}
