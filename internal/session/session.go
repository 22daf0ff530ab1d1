package session

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/congo_atm/internal/account"
)

var (
	// ErrInvalidCredentials is returned when no account matches the username/PIN pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotLoggedIn is returned by account operations on a logged out session.
	ErrNotLoggedIn = errors.New("not logged in")
)

// State is the authentication state of a session.
type State int

const (
	StateLoggedOut State = iota
	StateLoggedIn
)

func (s State) String() string {
	if s == StateLoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Session tracks which account, if any, is authenticated and routes every
// balance change through that account's username.
type Session struct {
	accounts *account.Service
	state    State
	username string
	view     account.Account
}

// New returns a logged out session.
func New(accounts *account.Service) *Session {
	return &Session{accounts: accounts}
}

// State reports whether the session is logged in.
func (s *Session) State() State {
	return s.state
}

// Username returns the authenticated username, or "" when logged out.
func (s *Session) Username() string {
	return s.username
}

// Login authenticates the pair. A failed login leaves the session unchanged.
func (s *Session) Login(username, pin string) error {
	a, ok := s.accounts.Authenticate(username, pin)
	if !ok {
		return ErrInvalidCredentials
	}
	s.state = StateLoggedIn
	s.username = a.Username
	s.view = a
	return nil
}

// Logout always succeeds.
func (s *Session) Logout() {
	s.state = StateLoggedOut
	s.username = ""
	s.view = account.Account{}
}

// Current returns the session's view of the authenticated account.
func (s *Session) Current() (account.Account, error) {
	if s.State() != StateLoggedIn {
		return account.Account{}, ErrNotLoggedIn
	}
	return s.view, nil
}

// History returns the authenticated account's transactions, most recent first.
func (s *Session) History() ([]account.Transaction, error) {
	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	return current.RecentFirst(), nil
}

// Deposit credits the authenticated account.
func (s *Session) Deposit(ctx context.Context, amount decimal.Decimal) (account.Account, error) {
	if s.State() != StateLoggedIn {
		return account.Account{}, ErrNotLoggedIn
	}
	return s.refresh(s.accounts.Deposit(ctx, s.username, amount))
}

// Withdraw debits the authenticated account.
func (s *Session) Withdraw(ctx context.Context, amount decimal.Decimal) (account.Account, error) {
	if s.State() != StateLoggedIn {
		return account.Account{}, ErrNotLoggedIn
	}
	return s.refresh(s.accounts.Withdraw(ctx, s.username, amount))
}

func (s *Session) refresh(updated account.Account, err error) (account.Account, error) {
	if err != nil {
		return account.Account{}, err
	}
	s.view = updated
	return updated, nil
}

func resume(accounts *account.Service, username string) (*Session, error) {
	a, err := accounts.Get(username)
	if err != nil {
		return nil, err
	}
	return &Session{accounts: accounts, state: StateLoggedIn, username: a.Username, view: a}, nil
}
