package account

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var fixedTime = time.Date(2026, time.October, 18, 14, 5, 9, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func mustFind(t *testing.T, accounts []Account, username string) Account {
	t.Helper()
	a, ok := Find(accounts, username)
	if !ok {
		t.Fatalf("account %s not found", username)
	}
	return a
}

func TestAuthenticate(t *testing.T) {
	accounts := DefaultAccounts()

	for _, a := range accounts {
		got, ok := Authenticate(accounts, a.Username, a.PIN)
		if !ok || got.Username != a.Username {
			t.Fatalf("expected %s to authenticate", a.Username)
		}
		if _, ok := Authenticate(accounts, a.Username, a.PIN+"0"); ok {
			t.Fatalf("expected wrong pin to fail for %s", a.Username)
		}
	}

	if _, ok := Authenticate(accounts, "ADMIN", "1234"); ok {
		t.Fatalf("expected username match to be case-sensitive")
	}
	if _, ok := Authenticate(accounts, "ghost", "1234"); ok {
		t.Fatalf("expected unknown username to fail")
	}
	if _, ok := Authenticate(accounts, "admin", "1111"); ok {
		t.Fatalf("expected another account's pin to fail")
	}
}

func TestDepositCreditsOnlyTarget(t *testing.T) {
	accounts := DefaultAccounts()
	accounts, err := Deposit(accounts, "admin", dec(10), fixedTime)
	if err != nil {
		t.Fatalf("seed deposit: %v", err)
	}

	next, err := Deposit(accounts, "user1", dec(500), fixedTime)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}

	user := mustFind(t, next, "user1")
	if !user.Balance.Equal(dec(3500)) {
		t.Fatalf("expected balance 3500, got %s", user.Balance)
	}
	if len(user.Transactions) != 1 {
		t.Fatalf("expected one transaction, got %d", len(user.Transactions))
	}
	tx := user.Transactions[0]
	if tx.Kind != KindDeposit || !tx.Amount.Equal(dec(500)) {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tx.Timestamp != "10/18/2026, 2:05:09 PM" {
		t.Fatalf("unexpected timestamp %q", tx.Timestamp)
	}

	// the input collection is untouched
	if prev := mustFind(t, accounts, "user1"); !prev.Balance.Equal(dec(3000)) || len(prev.Transactions) != 0 {
		t.Fatalf("input mutated: %+v", prev)
	}

	// the other account is carried over as-is
	if &next[0].Transactions[0] != &accounts[0].Transactions[0] {
		t.Fatalf("expected untouched account to share its history")
	}
	if !next[0].Balance.Equal(accounts[0].Balance) {
		t.Fatalf("expected admin balance unchanged")
	}
}

func TestWithdrawBoundary(t *testing.T) {
	accounts := DefaultAccounts()

	rejected, err := Withdraw(accounts, "user1", dec(3001), fixedTime)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := mustFind(t, rejected, "user1"); !got.Balance.Equal(dec(3000)) || len(got.Transactions) != 0 {
		t.Fatalf("rejected withdrawal changed state: %+v", got)
	}

	next, err := Withdraw(accounts, "user1", dec(3000), fixedTime)
	if err != nil {
		t.Fatalf("withdraw full balance: %v", err)
	}
	got := mustFind(t, next, "user1")
	if !got.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", got.Balance)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].Kind != KindWithdraw {
		t.Fatalf("expected one withdraw transaction, got %+v", got.Transactions)
	}
}

func TestMutationsRejectInvalidInput(t *testing.T) {
	accounts := DefaultAccounts()

	for _, amount := range []decimal.Decimal{decimal.Zero, dec(-5), decimal.New(1, 3000000), decimal.New(1, -3)} {
		if _, err := Deposit(accounts, "admin", amount, fixedTime); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("deposit %s: expected ErrInvalidAmount, got %v", amount, err)
		}
		if _, err := Withdraw(accounts, "admin", amount, fixedTime); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("withdraw %s: expected ErrInvalidAmount, got %v", amount, err)
		}
	}

	if _, err := Deposit(accounts, "ghost", dec(1), fixedTime); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestBalanceNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		accounts := DefaultAccounts()
		for step := 0; step < 200; step++ {
			username := accounts[rng.Intn(len(accounts))].Username
			amount := decimal.New(rng.Int63n(400_000)+1, -2)
			before := mustFind(t, accounts, username)

			var (
				next []Account
				err  error
			)
			if rng.Intn(2) == 0 {
				next, err = Deposit(accounts, username, amount, fixedTime)
			} else {
				next, err = Withdraw(accounts, username, amount, fixedTime)
			}

			if errors.Is(err, ErrInsufficientBalance) {
				if !amount.GreaterThan(before.Balance) {
					t.Fatalf("withdrawal of %s rejected with balance %s", amount, before.Balance)
				}
				continue
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			after := mustFind(t, next, username)
			if after.Balance.IsNegative() {
				t.Fatalf("balance went negative: %s", after.Balance)
			}
			if len(after.Transactions) != len(before.Transactions)+1 {
				t.Fatalf("expected exactly one appended transaction")
			}
			accounts = next
		}
	}
}

func TestParseAmount(t *testing.T) {
	invalid := []string{
		"", "   ", "abc", "0", "-10", "1.2.3",
		"1e3000000", "1e999999999", "1e-999999999", "0.001", "12.345", "1000000000.01", "2e9",
	}
	for _, raw := range invalid {
		if _, err := ParseAmount(raw); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ParseAmount(%q): expected ErrInvalidAmount, got %v", raw, err)
		}
	}

	amount, err := ParseAmount(" 12.50 ")
	if err != nil {
		t.Fatalf("ParseAmount: %v", err)
	}
	if !amount.Equal(decimal.New(1250, -2)) {
		t.Fatalf("expected 12.50, got %s", amount)
	}

	for _, raw := range []string{"1e9", "1000000000", "0.01", "12.500", "5e2"} {
		if _, err := ParseAmount(raw); err != nil {
			t.Fatalf("ParseAmount(%q): %v", raw, err)
		}
	}
}

func TestRecentFirst(t *testing.T) {
	accounts := DefaultAccounts()
	accounts, _ = Deposit(accounts, "admin", dec(1), fixedTime)
	accounts, _ = Withdraw(accounts, "admin", dec(2), fixedTime)

	admin := mustFind(t, accounts, "admin")
	recent := admin.RecentFirst()
	if recent[0].Kind != KindWithdraw || recent[1].Kind != KindDeposit {
		t.Fatalf("unexpected order: %+v", recent)
	}
	if admin.Transactions[0].Kind != KindDeposit {
		t.Fatalf("stored history must stay oldest first")
	}
}
