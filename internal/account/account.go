package account

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientBalance rejects a withdrawal larger than the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount covers empty, unparseable, non-positive and out of
	// range amounts.
	ErrInvalidAmount = errors.New("amount must be a positive number of at most 1000000000 with up to two decimals")

	// ErrAccountNotFound indicates no account carries the requested username.
	ErrAccountNotFound = errors.New("account not found")
)

const (
	// AmountDecimals is the finest unit an amount may carry.
	AmountDecimals = 2

	// exponentLimit bounds the exponent before any arithmetic runs, so inputs
	// like 1e999999999 are rejected without expanding them.
	exponentLimit = 18
)

// MaxAmount caps a single deposit or withdrawal.
var MaxAmount = decimal.New(1, 9)

// ParseAmount turns user input into a positive, bounded amount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if !validAmount(amount) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return amount, nil
}

func validAmount(amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return false
	}
	if exp := amount.Exponent(); exp > exponentLimit || exp < -exponentLimit {
		return false
	}
	if !amount.Equal(amount.Truncate(AmountDecimals)) {
		return false
	}
	return !amount.GreaterThan(MaxAmount)
}

// Find returns the account with the given username.
func Find(accounts []Account, username string) (Account, bool) {
	for _, a := range accounts {
		if a.Username == username {
			return a, true
		}
	}
	return Account{}, false
}

// Authenticate returns the account whose username and PIN both match exactly.
func Authenticate(accounts []Account, username, pin string) (Account, bool) {
	for _, a := range accounts {
		if a.Username == username && a.PIN == pin {
			return a, true
		}
	}
	return Account{}, false
}

// Deposit credits amount to username and records a Deposit transaction.
// The input slice is left untouched; the result is a new collection.
func Deposit(accounts []Account, username string, amount decimal.Decimal, at time.Time) ([]Account, error) {
	if !validAmount(amount) {
		return accounts, ErrInvalidAmount
	}
	return apply(accounts, username, func(a Account) (Account, error) {
		a.Balance = a.Balance.Add(amount)
		a.Transactions = appendTransaction(a.Transactions, newTransaction(KindDeposit, amount, at))
		return a, nil
	})
}

// Withdraw debits amount from username and records a Withdraw transaction.
// Withdrawing more than the balance returns ErrInsufficientBalance and the
// unchanged input.
func Withdraw(accounts []Account, username string, amount decimal.Decimal, at time.Time) ([]Account, error) {
	if !validAmount(amount) {
		return accounts, ErrInvalidAmount
	}
	return apply(accounts, username, func(a Account) (Account, error) {
		if amount.GreaterThan(a.Balance) {
			return a, ErrInsufficientBalance
		}
		a.Balance = a.Balance.Sub(amount)
		a.Transactions = appendTransaction(a.Transactions, newTransaction(KindWithdraw, amount, at))
		return a, nil
	})
}

func apply(accounts []Account, username string, update func(Account) (Account, error)) ([]Account, error) {
	idx := -1
	for i, a := range accounts {
		if a.Username == username {
			idx = i
			break
		}
	}
	if idx < 0 {
		return accounts, ErrAccountNotFound
	}

	updated, err := update(accounts[idx])
	if err != nil {
		return accounts, err
	}

	out := make([]Account, len(accounts))
	copy(out, accounts)
	out[idx] = updated
	return out, nil
}

// appendTransaction never writes into the backing array of history, which may
// still be shared with a previous collection.
func appendTransaction(history []Transaction, tx Transaction) []Transaction {
	out := make([]Transaction, len(history), len(history)+1)
	copy(out, history)
	return append(out, tx)
}
