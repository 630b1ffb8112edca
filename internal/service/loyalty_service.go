package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coffeehouse/internal/domain"
	"coffeehouse/internal/repository"
)

// Reconciliation сверка сохранённого баланса с журналом операций
type Reconciliation struct {
	Stored       int64 `json:"stored"`
	Replayed     int64 `json:"replayed"`
	Transactions int   `json:"transactions"`
	Consistent   bool  `json:"consistent"`
}

// LoyaltyService баланс баллов и журнал. Изменение баланса и запись в журнал
// выполняются в одной транзакции.
type LoyaltyService struct {
	repo   *repository.LoyaltyRepository
	tx     repository.TxManager
	now    func() time.Time
	logger *zap.Logger
}

func NewLoyaltyService(repo *repository.LoyaltyRepository, tx repository.TxManager, logger *zap.Logger) *LoyaltyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoyaltyService{repo: repo, tx: tx, now: time.Now, logger: logger}
}

func (s *LoyaltyService) Balance(ctx context.Context) (int64, error) {
	return s.repo.Balance(ctx)
}

// Transactions новые первыми
func (s *LoyaltyService) Transactions(ctx context.Context) ([]domain.LoyaltyTransaction, error) {
	return s.repo.Transactions(ctx)
}

// Credit начисляет баллы. Для нуля ничего не делает и возвращает nil.
func (s *LoyaltyService) Credit(ctx context.Context, amount int64, description string) (*domain.LoyaltyTransaction, error) {
	return s.apply(ctx, domain.TransactionEarned, amount, description)
}

// Debit списывает баллы, баланс не уходит ниже нуля
func (s *LoyaltyService) Debit(ctx context.Context, amount int64, description string) (*domain.LoyaltyTransaction, error) {
	return s.apply(ctx, domain.TransactionSpent, amount, description)
}

// RecordTransaction добавляет запись в журнал без изменения баланса
func (s *LoyaltyService) RecordTransaction(ctx context.Context, t domain.LoyaltyTransaction) error {
	if t.Amount <= 0 || (t.Type != domain.TransactionEarned && t.Type != domain.TransactionSpent) {
		return ErrInvalidInput
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Date.IsZero() {
		t.Date = s.now()
	}
	return s.repo.PrependTransaction(ctx, t)
}

func (s *LoyaltyService) apply(ctx context.Context, typ domain.TransactionType, amount int64, description string) (*domain.LoyaltyTransaction, error) {
	if amount < 0 {
		return nil, ErrInvalidInput
	}
	if amount == 0 {
		return nil, nil
	}
	t := domain.LoyaltyTransaction{
		ID:          uuid.NewString(),
		Type:        typ,
		Amount:      amount,
		Description: description,
		Date:        s.now(),
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		balance, err := s.repo.Balance(ctx)
		if err != nil {
			return err
		}
		if err := s.repo.SetBalance(ctx, step(balance, typ, amount)); err != nil {
			return err
		}
		return s.RecordTransaction(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("loyalty points changed",
		zap.String("session", repository.SessionFromContext(ctx)),
		zap.String("type", string(typ)), zap.Int64("amount", amount))
	return &t, nil
}

// Reconcile проигрывает журнал от стартового начисления и сравнивает с балансом
func (s *LoyaltyService) Reconcile(ctx context.Context) (*Reconciliation, error) {
	var r Reconciliation
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		stored, err := s.repo.Balance(ctx)
		if err != nil {
			return err
		}
		log, err := s.repo.Transactions(ctx)
		if err != nil {
			return err
		}
		replayed := repository.StartingBalance
		// журнал хранится новыми первыми
		for i := len(log) - 1; i >= 0; i-- {
			replayed = step(replayed, log[i].Type, log[i].Amount)
		}
		r = Reconciliation{Stored: stored, Replayed: replayed, Transactions: len(log), Consistent: stored == replayed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !r.Consistent {
		s.logger.Warn("loyalty balance diverged from log",
			zap.String("session", repository.SessionFromContext(ctx)),
			zap.Int64("stored", r.Stored), zap.Int64("replayed", r.Replayed))
	}
	return &r, nil
}

func step(balance int64, typ domain.TransactionType, amount int64) int64 {
	switch typ {
	case domain.TransactionEarned:
		return balance + amount
	case domain.TransactionSpent:
		if amount > balance {
			return 0
		}
		return balance - amount
	}
	return balance
}
