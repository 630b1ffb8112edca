package service

import (
	"fmt"

	"coffeehouse/internal/catalog"
	"coffeehouse/internal/domain"
	"coffeehouse/internal/repository"
)

// CatalogService чтение меню
type CatalogService struct {
	catalog *catalog.Catalog
}

func NewCatalogService(c *catalog.Catalog) *CatalogService {
	return &CatalogService{catalog: c}
}

func (s *CatalogService) Categories() []domain.CategoryInfo {
	return s.catalog.Categories()
}

func (s *CatalogService) Product(id string) (*domain.Product, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	p, err := s.catalog.Product(id)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
	}
	return &p, nil
}

// List товары по фильтру; неизвестная категория — ошибка ввода
func (s *CatalogService) List(f catalog.Filter) ([]domain.Product, error) {
	if f.Category != "" && f.Category != catalog.CategoryAll && !s.knownCategory(f.Category) {
		return nil, fmt.Errorf("unknown category %q: %w", f.Category, ErrInvalidInput)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, ErrInvalidInput
	}
	return s.catalog.List(f), nil
}

func (s *CatalogService) knownCategory(id string) bool {
	for _, c := range s.catalog.Categories() {
		if string(c.ID) == id {
			return true
		}
	}
	return false
}
