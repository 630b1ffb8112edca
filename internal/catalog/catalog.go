// Package catalog содержит статический каталог кофейни.
package catalog

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"

	"coffeehouse/internal/domain"
)

// ErrProductNotFound товар отсутствует в каталоге
var ErrProductNotFound = errors.New("product not found")

// CategoryAll фильтр без ограничения по категории
const CategoryAll = "all"

// Filter параметры фильтрации списка товаров
type Filter struct {
	Category      string
	Query         string
	MinPrice      *int64
	MaxPrice      *int64
	AvailableOnly bool
}

// Catalog неизменяемый набор товаров и категорий
type Catalog struct {
	products   []domain.Product
	byID       map[string]int
	categories []domain.CategoryInfo
}

// New создаёт каталог по заданным данным
func New(products []domain.Product, categories []domain.CategoryInfo) *Catalog {
	c := &Catalog{
		products:   products,
		byID:       make(map[string]int, len(products)),
		categories: categories,
	}
	for i, p := range products {
		c.byID[p.ID] = i
	}
	return c
}

// Default каталог меню кофейни
func Default() *Catalog {
	return New(defaultProducts, defaultCategories)
}

// Categories список категорий
func (c *Catalog) Categories() []domain.CategoryInfo {
	out := make([]domain.CategoryInfo, len(c.categories))
	copy(out, c.categories)
	return out
}

// Product возвращает товар по id
func (c *Catalog) Product(id string) (domain.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}

// List товары в порядке каталога с учётом фильтра
func (c *Catalog) List(f Filter) []domain.Product {
	// Caser хранит состояние, поэтому свой на каждый вызов
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(f.Query))
	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if f.Category != "" && f.Category != CategoryAll && string(p.Category) != f.Category {
			continue
		}
		if query != "" && !contains(fold, p.Name, query) && !contains(fold, p.Description, query) {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		if f.AvailableOnly && !p.Available {
			continue
		}
		out = append(out, p)
	}
	return out
}

// case-insensitive contains, substr уже приведён к fold
func contains(fold cases.Caser, s, substr string) bool {
	return strings.Contains(fold.String(s), substr)
}
