package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"coffeehouse/internal/cart"
	"coffeehouse/internal/domain"
	"coffeehouse/internal/events"
	"coffeehouse/internal/pricing"
	"coffeehouse/internal/repository"
)

// PlaceOrderRequest форма оформления. Пустой способ получения и
// отсутствующие баллы берутся из черновика корзины.
type PlaceOrderRequest struct {
	DeliveryType  domain.DeliveryType  `json:"deliveryType" validate:"required,oneof=delivery pickup"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" validate:"required,oneof=cash online"`
	Name          string               `json:"name" validate:"required"`
	Phone         string               `json:"phone" validate:"required,phone"`
	Address       string               `json:"address" validate:"required_if=DeliveryType delivery"`
	LoyaltyPoints *int64               `json:"loyaltyPoints,omitempty" validate:"omitempty,gte=0"`
}

// OrderEvents получатель событий о заказах
type OrderEvents interface {
	PublishOrderStatus(e events.OrderStatusChanged)
}

// OrderService оформление заказа и его статусы
type OrderService struct {
	orders   *repository.OrderRepository
	carts    *repository.CartRepository
	profiles *repository.ProfileRepository
	loyalty  *LoyaltyService
	tx       repository.TxManager
	events   OrderEvents
	ids      *snowflake.Node
	validate *validator.Validate
	qrBase   string
	now      func() time.Time
	logger   *zap.Logger
}

type OrderServiceConfig struct {
	NodeID    int64
	QRBaseURL string
}

func NewOrderService(orders *repository.OrderRepository, carts *repository.CartRepository, profiles *repository.ProfileRepository,
	loyalty *LoyaltyService, tx repository.TxManager, ev OrderEvents, cfg OrderServiceConfig, logger *zap.Logger) (*OrderService, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:   orders,
		carts:    carts,
		profiles: profiles,
		loyalty:  loyalty,
		tx:       tx,
		events:   ev,
		ids:      node,
		validate: newValidator(),
		qrBase:   cfg.QRBaseURL,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// PlaceOrder проверяет форму, считает корзину и атомарно записывает заказ,
// списание и начисление баллов, контакты; очищает корзину и черновик
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentMethodCash
	}

	var created domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		draft, err := s.profiles.Draft(ctx)
		if err != nil {
			return err
		}
		if req.DeliveryType == "" {
			req.DeliveryType = draft.DeliveryType
		}
		points := draft.LoyaltyPoints
		if req.LoyaltyPoints != nil {
			points = *req.LoyaltyPoints
		}
		if err := s.validate.Struct(req); err != nil {
			return validationError(err)
		}

		stored, err := s.carts.Load(ctx)
		if err != nil {
			return err
		}
		lines := cart.FromLines(stored).Lines()
		if len(lines) == 0 {
			return ErrEmptyCart
		}
		balance, err := s.loyalty.Balance(ctx)
		if err != nil {
			return err
		}
		q := pricing.NewQuote(lines, req.DeliveryType, points, balance)

		o := domain.Order{
			ID:                  s.ids.Generate().String(),
			Items:               lines,
			Subtotal:            q.Subtotal,
			DeliveryFee:         q.DeliveryFee,
			Discount:            q.Discount,
			Total:               q.Total,
			DeliveryType:        req.DeliveryType,
			PaymentMethod:       req.PaymentMethod,
			Phone:               req.Phone,
			Name:                req.Name,
			Status:              domain.OrderStatusPending,
			CreatedAt:           s.now().UTC(),
			LoyaltyPointsUsed:   q.PointsUsed,
			LoyaltyPointsEarned: q.PointsEarned,
		}
		if o.DeliveryType == domain.DeliveryTypeDelivery {
			o.Address = req.Address
		}
		if err := s.orders.Create(ctx, &o); err != nil {
			return err
		}
		if _, err := s.loyalty.Debit(ctx, q.PointsUsed, fmt.Sprintf("Списание баллов за заказ #%s", o.ID)); err != nil {
			return err
		}
		if _, err := s.loyalty.Credit(ctx, q.PointsEarned, fmt.Sprintf("Начисление баллов за заказ #%s", o.ID)); err != nil {
			return err
		}
		if err := s.profiles.SaveUserInfo(ctx, domain.UserInfo{Name: req.Name, Phone: req.Phone, Address: req.Address}); err != nil {
			return err
		}
		if err := s.carts.Clear(ctx); err != nil {
			return err
		}
		if err := s.profiles.ClearDraft(ctx); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("session", repository.SessionFromContext(ctx)),
		zap.String("order_id", created.ID),
		zap.Int64("total", created.Total),
		zap.Int64("points_used", created.LoyaltyPointsUsed),
		zap.Int64("points_earned", created.LoyaltyPointsEarned))
	s.publish(ctx, created)
	return &created, nil
}

// FindOrder заказ по id; repository.ErrNotFound если его нет
func (s *OrderService) FindOrder(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.orders.GetByID(ctx, id)
}

// ListOrders новые первыми
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// Advance переводит заказ в следующий статус. Для completed ничего не меняет,
// changed=false.
func (s *OrderService) Advance(ctx context.Context, id string) (*domain.Order, bool, error) {
	var (
		updated *domain.Order
		changed bool
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.FindOrder(ctx, id)
		if err != nil {
			return err
		}
		updated = o
		if o.Status.Terminal() {
			return nil
		}
		o.Status = o.Status.Next()
		changed = true
		return s.orders.Update(ctx, o)
	})
	if err != nil {
		return nil, false, err
	}
	if changed {
		s.logger.Info("order status advanced",
			zap.String("session", repository.SessionFromContext(ctx)),
			zap.String("order_id", id), zap.String("status", string(updated.Status)))
		s.publish(ctx, *updated)
	}
	return updated, changed, nil
}

// QRCode PNG со ссылкой на заказ для выдачи
func (s *OrderService) QRCode(ctx context.Context, id string) ([]byte, error) {
	o, err := s.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(s.qrBase+o.ID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

func (s *OrderService) publish(ctx context.Context, o domain.Order) {
	if s.events == nil {
		return
	}
	s.events.PublishOrderStatus(events.OrderStatusChanged{Session: repository.SessionFromContext(ctx), Order: o})
}
