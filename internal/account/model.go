package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the direction of a transaction.
type Kind string

const (
	KindDeposit  Kind = "Deposit"
	KindWithdraw Kind = "Withdraw"
)

// TimestampLayout renders transaction times the way the ATM screen shows them.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// Account is a stored username/PIN/balance/history record.
type Account struct {
	Username     string          `json:"username"`
	PIN          string          `json:"pin"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
}

// Transaction is an immutable record of a single balance change.
type Transaction struct {
	Kind      Kind            `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp string          `json:"date"`
}

func newTransaction(kind Kind, amount decimal.Decimal, at time.Time) Transaction {
	return Transaction{Kind: kind, Amount: amount, Timestamp: at.Format(TimestampLayout)}
}

// DefaultAccounts returns a fresh copy of the demo accounts written on first run.
func DefaultAccounts() []Account {
	return []Account{
		{Username: "admin", PIN: "1234", Balance: decimal.NewFromInt(5000), Transactions: []Transaction{}},
		{Username: "user1", PIN: "1111", Balance: decimal.NewFromInt(3000), Transactions: []Transaction{}},
	}
}

// RecentFirst returns the history newest entry first. The account is not modified.
func (a Account) RecentFirst() []Transaction {
	out := make([]Transaction, len(a.Transactions))
	for i, tx := range a.Transactions {
		out[len(a.Transactions)-1-i] = tx
	}
	return out
}

// clone returns a copy whose history does not share memory with a.
func (a Account) clone() Account {
	a.Transactions = append([]Transaction(nil), a.Transactions...)
	if a.Transactions == nil {
		a.Transactions = []Transaction{}
	}
	return a
}
