package account

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/congo_atm/internal/notification"
)

// Service owns the live account collection. Every mutation is computed,
// persisted and only then adopted, all under one lock, so operations are
// totally ordered and a failed write leaves state unchanged.
type Service struct {
	mu       sync.Mutex
	repo     *Repository
	accounts []Account
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService loads the collection from repo.
func NewService(ctx context.Context, repo *Repository, notifier notification.Notifier, logger *slog.Logger) (*Service, error) {
	accounts, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return &Service{repo: repo, accounts: accounts, notifier: notifier, logger: logger, now: time.Now}, nil
}

// Authenticate looks up the account matching username and pin. Returned
// accounts never share history with the live collection.
func (s *Service) Authenticate(username, pin string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := Authenticate(s.accounts, username, pin)
	if !ok {
		return Account{}, false
	}
	return a.clone(), true
}

// Get returns the current state of an account.
func (s *Service) Get(username string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := Find(s.accounts, username)
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a.clone(), nil
}

// Deposit credits username and returns the refreshed account.
func (s *Service) Deposit(ctx context.Context, username string, amount decimal.Decimal) (Account, error) {
	return s.mutate(ctx, KindDeposit, username, amount, Deposit)
}

// Withdraw debits username and returns the refreshed account.
func (s *Service) Withdraw(ctx context.Context, username string, amount decimal.Decimal) (Account, error) {
	return s.mutate(ctx, KindWithdraw, username, amount, Withdraw)
}

type operation func([]Account, string, decimal.Decimal, time.Time) ([]Account, error)

func (s *Service) mutate(ctx context.Context, kind Kind, username string, amount decimal.Decimal, op operation) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := op(s.accounts, username, amount, s.now())
	if err != nil {
		return Account{}, err
	}
	if err := s.repo.Persist(ctx, next); err != nil {
		return Account{}, err
	}
	s.accounts = next

	updated, _ := Find(next, username)
	s.logger.Info("transaction recorded",
		slog.String("username", username),
		slog.String("kind", string(kind)),
		slog.String("amount", amount.String()),
		slog.String("balance", updated.Balance.String()),
	)

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        receiptKind(kind),
			Destination: username,
			Body:        fmt.Sprintf("%s %s, balance %s", kind, amount.String(), updated.Balance.String()),
		})
	}
	return updated.clone(), nil
}

func receiptKind(kind Kind) string {
	if kind == KindWithdraw {
		return notification.KindWithdrawReceipt
	}
	return notification.KindDepositReceipt
}
