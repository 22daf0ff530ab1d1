package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/congo_atm/internal/account"
)

const (
	// LocalsKey holds the resumed *Session for the current request.
	LocalsKey = "atm_session"
	// TokenLocalsKey holds the bearer token the session was resumed from.
	TokenLocalsKey = "atm_session_token"
)

// Handler exposes login, logout and account endpoints.
type Handler struct {
	manager *Manager
}

// NewHandler constructs a session HTTP handler.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

type loginRequest struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
}

type amountRequest struct {
	Amount json.RawMessage `json:"amount"`
}

type transactionResponse struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

type accountResponse struct {
	Username     string                `json:"username"`
	Balance      decimal.Decimal       `json:"balance"`
	Transactions []transactionResponse `json:"transactions"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Account accountResponse `json:"account"`
}

func toAccountResponse(a account.Account) accountResponse {
	recent := a.RecentFirst()
	txs := make([]transactionResponse, 0, len(recent))
	for _, tx := range recent {
		txs = append(txs, transactionResponse{Type: string(tx.Kind), Amount: tx.Amount, Date: tx.Timestamp})
	}
	return accountResponse{Username: a.Username, Balance: a.Balance, Transactions: txs}
}

// Login authenticates a username/PIN pair and opens a session.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token, s, err := h.manager.Open(c.UserContext(), req.Username, req.PIN)
	if err != nil {
		return toFiberError(err)
	}
	current, err := s.Current()
	if err != nil {
		return toFiberError(err)
	}
	return c.Status(http.StatusOK).JSON(loginResponse{Token: token, Account: toAccountResponse(current)})
}

// Logout closes the current session.
func (h *Handler) Logout(c *fiber.Ctx) error {
	s, token := FromLocals(c)
	if s == nil {
		return fiber.NewError(http.StatusUnauthorized, ErrNotLoggedIn.Error())
	}
	if err := h.manager.Close(c.UserContext(), token, s); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}

// Account returns the authenticated account with its history, newest first.
func (h *Handler) Account(c *fiber.Ctx) error {
	s, _ := FromLocals(c)
	if s == nil {
		return fiber.NewError(http.StatusUnauthorized, ErrNotLoggedIn.Error())
	}
	current, err := s.Current()
	if err != nil {
		return toFiberError(err)
	}
	return c.Status(http.StatusOK).JSON(toAccountResponse(current))
}

// Deposit credits the authenticated account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	return h.mutate(c, (*Session).Deposit)
}

// Withdraw debits the authenticated account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	return h.mutate(c, (*Session).Withdraw)
}

func (h *Handler) mutate(c *fiber.Ctx, op func(*Session, context.Context, decimal.Decimal) (account.Account, error)) error {
	s, _ := FromLocals(c)
	if s == nil {
		return fiber.NewError(http.StatusUnauthorized, ErrNotLoggedIn.Error())
	}
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := account.ParseAmount(rawAmount(req.Amount))
	if err != nil {
		return toFiberError(err)
	}
	updated, err := op(s, c.UserContext(), amount)
	if err != nil {
		return toFiberError(err)
	}
	return c.Status(http.StatusOK).JSON(toAccountResponse(updated))
}

// FromLocals returns the session and token stored by the session middleware.
func FromLocals(c *fiber.Ctx) (*Session, string) {
	s, _ := c.Locals(LocalsKey).(*Session)
	token, _ := c.Locals(TokenLocalsKey).(string)
	return s, token
}

// rawAmount accepts both JSON numbers and strings.
func rawAmount(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

func toFiberError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrNotLoggedIn), errors.Is(err, ErrSessionNotFound):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, account.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrInsufficientBalance):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, account.ErrAccountNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
