package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coffeehouse/internal/domain"
	"coffeehouse/internal/pricing"
	"coffeehouse/internal/service"
)

// @Summary Cart with pricing by the saved draft
// @Tags cart
// @Produce json
// @Param X-Session-ID header string false "Session"
// @Success 200 {object} cartResponse
// @Router /cart [get]
func (s *Server) getCart(c *gin.Context) {
	v, err := s.cart.View(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := cartResponse{Lines: make([]cartLine, 0, len(v.Lines)), Count: v.Count, Draft: v.Draft, Quote: v.Quote}
	for _, l := range v.Lines {
		resp.Lines = append(resp.Lines, lineResponse(l))
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Clear cart
// @Tags cart
// @Success 204
// @Router /cart [delete]
func (s *Server) clearCart(c *gin.Context) {
	if err := s.cart.Clear(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Add line
// @Tags cart
// @Accept json
// @Produce json
// @Param input body service.AddLineRequest true "Selection"
// @Success 201 {object} domain.CartLine
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /cart/lines [post]
func (s *Server) addLine(c *gin.Context) {
	var req service.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	line, err := s.cart.AddLine(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lineResponse(*line))
}

// @Summary Increment line quantity
// @Tags cart
// @Produce json
// @Param key path string true "Line key"
// @Success 200 {object} domain.CartLine
// @Failure 404 {object} map[string]string
// @Router /cart/lines/{key}/increment [post]
func (s *Server) incrementLine(c *gin.Context) {
	line, err := s.cart.Increment(c.Request.Context(), domain.LineKey(c.Param("key")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lineResponse(*line))
}

// @Summary Decrement line quantity, removes the line at one
// @Tags cart
// @Produce json
// @Param key path string true "Line key"
// @Success 200 {object} domain.CartLine
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /cart/lines/{key}/decrement [post]
func (s *Server) decrementLine(c *gin.Context) {
	line, err := s.cart.Decrement(c.Request.Context(), domain.LineKey(c.Param("key")))
	if err != nil {
		writeError(c, err)
		return
	}
	if line == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, lineResponse(*line))
}

// @Summary Remove line
// @Tags cart
// @Param key path string true "Line key"
// @Success 204
// @Router /cart/lines/{key} [delete]
func (s *Server) removeLine(c *gin.Context) {
	if err := s.cart.Remove(c.Request.Context(), domain.LineKey(c.Param("key"))); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Price the cart
// @Tags cart
// @Produce json
// @Param delivery_type query string false "delivery or pickup, draft by default"
// @Param points query int false "Points to redeem, draft by default"
// @Success 200 {object} pricing.Quote
// @Failure 400 {object} map[string]string
// @Router /cart/quote [get]
func (s *Server) getQuote(c *gin.Context) {
	ctx := c.Request.Context()
	draft, err := s.cart.Draft(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	t := draft.DeliveryType
	if v := c.Query("delivery_type"); v != "" {
		t = domain.DeliveryType(v)
	}
	points := draft.LoyaltyPoints
	if v := c.Query("points"); v != "" {
		points, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid points"})
			return
		}
	}
	q, err := s.cart.Quote(ctx, t, points)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// @Summary Checkout draft
// @Tags checkout
// @Produce json
// @Success 200 {object} domain.CheckoutDraft
// @Router /checkout/draft [get]
func (s *Server) getDraft(c *gin.Context) {
	d, err := s.cart.Draft(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary Save checkout draft, points are clamped to the redeemable maximum
// @Tags checkout
// @Accept json
// @Produce json
// @Param input body domain.CheckoutDraft true "Draft"
// @Success 200 {object} domain.CheckoutDraft
// @Failure 400 {object} map[string]string
// @Router /checkout/draft [put]
func (s *Server) saveDraft(c *gin.Context) {
	var req domain.CheckoutDraft
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	d, err := s.cart.SaveDraft(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// cartLine позиция с ключом для последующих запросов
type cartLine struct {
	Key string `json:"key"`
	domain.CartLine
	LineTotal int64 `json:"lineTotal"`
}

func lineResponse(l domain.CartLine) cartLine {
	return cartLine{Key: string(l.Key()), CartLine: l, LineTotal: pricing.LineTotal(l)}
}

type cartResponse struct {
	Lines []cartLine           `json:"lines"`
	Count int64                `json:"count"`
	Draft domain.CheckoutDraft `json:"draft"`
	Quote pricing.Quote        `json:"quote"`
}
