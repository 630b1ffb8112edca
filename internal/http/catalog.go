package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coffeehouse/internal/catalog"
)

// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {array} domain.CategoryInfo
// @Router /catalog/categories [get]
func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Categories())
}

// @Summary List products
// @Tags catalog
// @Produce json
// @Param category query string false "Category id or all"
// @Param q query string false "Name or description contains"
// @Param min_price query int false "Min price"
// @Param max_price query int false "Max price"
// @Param available query bool false "Only available"
// @Success 200 {array} domain.Product
// @Failure 400 {object} map[string]string
// @Router /catalog/products [get]
func (s *Server) listProducts(c *gin.Context) {
	f := catalog.Filter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}
	if v := c.Query("min_price"); v != "" {
		if x, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MinPrice = &x
		}
	}
	if v := c.Query("max_price"); v != "" {
		if x, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MaxPrice = &x
		}
	}
	if v := c.Query("available"); v != "" {
		f.AvailableOnly, _ = strconv.ParseBool(v)
	}
	list, err := s.catalog.List(f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get product by id
// @Tags catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /catalog/products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.catalog.Product(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
