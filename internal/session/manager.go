package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/congo-pay/congo_atm/internal/account"
)

// Manager issues opaque tokens so a session can outlive a single request.
type Manager struct {
	accounts *account.Service
	repo     Repository
	logger   *slog.Logger
}

// NewManager builds a session manager.
func NewManager(accounts *account.Service, repo Repository, logger *slog.Logger) *Manager {
	return &Manager{accounts: accounts, repo: repo, logger: logger}
}

// Open logs in and returns the token for the new session.
func (m *Manager) Open(ctx context.Context, username, pin string) (string, *Session, error) {
	s := New(m.accounts)
	if err := s.Login(username, pin); err != nil {
		m.logger.Info("login rejected", slog.String("username", username))
		return "", nil, err
	}

	token := uuid.NewString()
	if err := m.repo.Save(ctx, token, s.Username()); err != nil {
		return "", nil, err
	}
	m.logger.Info("login succeeded", slog.String("username", s.Username()))
	return token, s, nil
}

// Resume rebuilds the logged in session behind token.
func (m *Manager) Resume(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	username, err := m.repo.Find(ctx, token)
	if err != nil {
		return nil, err
	}
	s, err := resume(m.accounts, username)
	if errors.Is(err, account.ErrAccountNotFound) {
		return nil, ErrSessionNotFound
	}
	return s, err
}

// Close logs the session out and forgets its token.
func (m *Manager) Close(ctx context.Context, token string, s *Session) error {
	if err := m.repo.Delete(ctx, token); err != nil {
		return err
	}
	if s != nil {
		m.logger.Info("logout", slog.String("username", s.Username()))
		s.Logout()
	}
	return nil
}
