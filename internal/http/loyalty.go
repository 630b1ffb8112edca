package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coffeehouse/internal/domain"
)

type loyaltyResponse struct {
	Balance      int64                       `json:"balance"`
	Transactions []domain.LoyaltyTransaction `json:"transactions"`
}

// @Summary Loyalty balance and transactions, newest first
// @Tags loyalty
// @Produce json
// @Success 200 {object} loyaltyResponse
// @Router /loyalty [get]
func (s *Server) getLoyalty(c *gin.Context) {
	ctx := c.Request.Context()
	balance, err := s.loyalty.Balance(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	log, err := s.loyalty.Transactions(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loyaltyResponse{Balance: balance, Transactions: log})
}

// @Summary Replay the transaction log against the stored balance
// @Tags loyalty
// @Produce json
// @Success 200 {object} service.Reconciliation
// @Router /loyalty/reconcile [get]
func (s *Server) reconcileLoyalty(c *gin.Context) {
	r, err := s.loyalty.Reconcile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
