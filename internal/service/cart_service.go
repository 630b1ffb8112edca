package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"coffeehouse/internal/cart"
	"coffeehouse/internal/catalog"
	"coffeehouse/internal/domain"
	"coffeehouse/internal/pricing"
	"coffeehouse/internal/repository"
)

// AddLineRequest выбор покупателя: товар, размер и добавки по id
type AddLineRequest struct {
	ProductID string   `json:"productId"`
	SizeID    string   `json:"sizeId,omitempty"`
	AddonIDs  []string `json:"addonIds,omitempty"`
}

// CartView корзина с расчётом по сохранённому черновику
type CartView struct {
	Lines []domain.CartLine    `json:"lines"`
	Count int64                `json:"count"`
	Draft domain.CheckoutDraft `json:"draft"`
	Quote pricing.Quote        `json:"quote"`
}

// CartService корзина сессии и черновик оформления
type CartService struct {
	catalog  *catalog.Catalog
	carts    *repository.CartRepository
	loyalty  *repository.LoyaltyRepository
	profiles *repository.ProfileRepository
	tx       repository.TxManager
	logger   *zap.Logger
}

func NewCartService(c *catalog.Catalog, carts *repository.CartRepository, loyalty *repository.LoyaltyRepository,
	profiles *repository.ProfileRepository, tx repository.TxManager, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{catalog: c, carts: carts, loyalty: loyalty, profiles: profiles, tx: tx, logger: logger}
}

// AddLine добавляет товар; та же конфигурация увеличивает количество
func (s *CartService) AddLine(ctx context.Context, req AddLineRequest) (*domain.CartLine, error) {
	product, size, addons, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	var added domain.CartLine
	err = s.mutate(ctx, func(l *cart.Ledger) error {
		added = l.Add(product, size, addons)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("cart line added", zap.String("session", repository.SessionFromContext(ctx)),
		zap.String("key", string(added.Key())), zap.Int64("quantity", added.Quantity))
	return &added, nil
}

// Increment +1 к позиции; неизвестный ключ — repository.ErrNotFound
func (s *CartService) Increment(ctx context.Context, key domain.LineKey) (*domain.CartLine, error) {
	var line domain.CartLine
	err := s.mutate(ctx, func(l *cart.Ledger) error {
		if !l.Increment(key) {
			return fmt.Errorf("cart line %s: %w", key, repository.ErrNotFound)
		}
		line, _ = l.Get(key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// Decrement -1 к позиции. Позиция с количеством 1 удаляется, тогда результат nil.
func (s *CartService) Decrement(ctx context.Context, key domain.LineKey) (*domain.CartLine, error) {
	var line *domain.CartLine
	err := s.mutate(ctx, func(l *cart.Ledger) error {
		if !l.Decrement(key) {
			return fmt.Errorf("cart line %s: %w", key, repository.ErrNotFound)
		}
		if got, ok := l.Get(key); ok {
			line = &got
		}
		return nil
	})
	return line, err
}

// Remove удаляет позицию; неизвестный ключ не ошибка
func (s *CartService) Remove(ctx context.Context, key domain.LineKey) error {
	return s.mutate(ctx, func(l *cart.Ledger) error {
		l.Remove(key)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context) error {
	return s.mutate(ctx, func(l *cart.Ledger) error {
		l.Clear()
		return nil
	})
}

func (s *CartService) Lines(ctx context.Context) ([]domain.CartLine, error) {
	lines, err := s.carts.Load(ctx)
	if err != nil {
		return nil, err
	}
	return cart.FromLines(lines).Lines(), nil
}

// Quote расчёт текущей корзины против текущего баланса
func (s *CartService) Quote(ctx context.Context, t domain.DeliveryType, points int64) (pricing.Quote, error) {
	if !t.Valid() {
		return pricing.Quote{}, fmt.Errorf("delivery type %q: %w", t, ErrInvalidInput)
	}
	var q pricing.Quote
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		lines, err := s.Lines(ctx)
		if err != nil {
			return err
		}
		balance, err := s.loyalty.Balance(ctx)
		if err != nil {
			return err
		}
		q = pricing.NewQuote(lines, t, points, balance)
		return nil
	})
	return q, err
}

// View корзина, счётчик для бейджа и расчёт по черновику
func (s *CartService) View(ctx context.Context) (*CartView, error) {
	var v CartView
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		lines, err := s.Lines(ctx)
		if err != nil {
			return err
		}
		draft, err := s.profiles.Draft(ctx)
		if err != nil {
			return err
		}
		q, err := s.Quote(ctx, draft.DeliveryType, draft.LoyaltyPoints)
		if err != nil {
			return err
		}
		v = CartView{Lines: lines, Count: cart.FromLines(lines).Count(), Draft: draft, Quote: q}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *CartService) Draft(ctx context.Context) (domain.CheckoutDraft, error) {
	return s.profiles.Draft(ctx)
}

// SaveDraft сохраняет выбор корзины; баллы ограничиваются доступным максимумом
func (s *CartService) SaveDraft(ctx context.Context, d domain.CheckoutDraft) (domain.CheckoutDraft, error) {
	if !d.DeliveryType.Valid() || d.LoyaltyPoints < 0 {
		return domain.CheckoutDraft{}, ErrInvalidInput
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		q, err := s.Quote(ctx, d.DeliveryType, d.LoyaltyPoints)
		if err != nil {
			return err
		}
		d.LoyaltyPoints = q.PointsUsed
		return s.profiles.SaveDraft(ctx, d)
	})
	if err != nil {
		return domain.CheckoutDraft{}, err
	}
	return d, nil
}

// mutate read-modify-write корзины в одной транзакции
func (s *CartService) mutate(ctx context.Context, fn func(l *cart.Ledger) error) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		lines, err := s.carts.Load(ctx)
		if err != nil {
			return err
		}
		l := cart.FromLines(lines)
		if err := fn(l); err != nil {
			return err
		}
		return s.carts.Save(ctx, l.Lines())
	})
}

func (s *CartService) resolve(req AddLineRequest) (domain.Product, *domain.Size, []domain.Addon, error) {
	if req.ProductID == "" {
		return domain.Product{}, nil, nil, ErrInvalidInput
	}
	product, err := s.catalog.Product(req.ProductID)
	if err != nil {
		return domain.Product{}, nil, nil, fmt.Errorf("product %s: %w", req.ProductID, ErrInvalidInput)
	}
	if !product.Available {
		return domain.Product{}, nil, nil, fmt.Errorf("product %s: %w", product.ID, ErrUnavailable)
	}
	var size *domain.Size
	if req.SizeID != "" {
		sz, ok := product.FindSize(req.SizeID)
		if !ok {
			return domain.Product{}, nil, nil, fmt.Errorf("size %s: %w", req.SizeID, ErrInvalidInput)
		}
		size = &sz
	}
	seen := make(map[string]bool, len(req.AddonIDs))
	addons := make([]domain.Addon, 0, len(req.AddonIDs))
	for _, id := range req.AddonIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		a, ok := product.FindAddon(id)
		if !ok {
			return domain.Product{}, nil, nil, fmt.Errorf("addon %s: %w", id, ErrInvalidInput)
		}
		addons = append(addons, a)
	}
	return product, size, addons, nil
}
