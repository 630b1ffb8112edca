package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coffeehouse/internal/domain"
)

// @Summary Saved contact info for the checkout form
// @Tags profile
// @Produce json
// @Success 200 {object} domain.UserInfo
// @Router /profile [get]
func (s *Server) getProfile(c *gin.Context) {
	info, err := s.profile.Get(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// @Summary Save contact info
// @Tags profile
// @Accept json
// @Produce json
// @Param input body domain.UserInfo true "Contacts"
// @Success 200 {object} domain.UserInfo
// @Failure 422 {object} map[string]any
// @Router /profile [put]
func (s *Server) saveProfile(c *gin.Context) {
	var req domain.UserInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	info, err := s.profile.Save(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
