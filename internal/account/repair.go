package account

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// storedAccount mirrors Account with the history left raw, so a malformed
// history only costs that account its history.
type storedAccount struct {
	Username     string          `json:"username"`
	PIN          string          `json:"pin"`
	Balance      json.RawMessage `json:"balance"`
	Transactions json.RawMessage `json:"transactions"`
}

// Decode parses a stored record and normalizes it. Only a record that is not
// a JSON array is an error; damaged entries are repaired or dropped one by
// one. repaired reports whether anything changed, in which case the caller
// should write the result back.
func Decode(record []byte) (accounts []Account, repaired bool, err error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(record, &entries); err != nil {
		return nil, false, fmt.Errorf("decode accounts: %w", err)
	}
	if entries == nil {
		return nil, false, fmt.Errorf("decode accounts: record is null")
	}

	accounts = make([]Account, 0, len(entries))
	for _, raw := range entries {
		a, fixed, ok := decodeAccount(raw)
		if !ok {
			repaired = true
			continue
		}
		if fixed {
			repaired = true
		}
		accounts = append(accounts, a)
	}

	accounts, normalized := Normalize(accounts)
	return accounts, repaired || normalized, nil
}

// decodeAccount reports ok=false for entries that are not account objects.
// A missing, null or unreadable history is returned as nil for Normalize to
// replace, and fixed is set for anything other than missing or null.
func decodeAccount(raw json.RawMessage) (a Account, fixed, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return Account{}, false, false
	}
	var stored storedAccount
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Account{}, false, false
	}
	a = Account{Username: stored.Username, PIN: stored.PIN}

	if isAbsent(stored.Balance) {
		fixed = true
	} else if err := json.Unmarshal(stored.Balance, &a.Balance); err != nil {
		return Account{}, false, false
	}

	if !isAbsent(stored.Transactions) {
		if err := json.Unmarshal(stored.Transactions, &a.Transactions); err != nil {
			a.Transactions = nil
			fixed = true
		}
	}
	return a, fixed, true
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// Encode serializes the whole collection.
func Encode(accounts []Account) ([]byte, error) {
	return json.Marshal(accounts)
}

// Normalize is the load-time migration step. It gives every account a non-nil
// history and keeps only the first account for each username.
func Normalize(accounts []Account) ([]Account, bool) {
	repaired := false
	seen := make(map[string]struct{}, len(accounts))
	out := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if _, dup := seen[a.Username]; dup {
			repaired = true
			continue
		}
		seen[a.Username] = struct{}{}
		if a.Transactions == nil {
			a.Transactions = []Transaction{}
			repaired = true
		}
		out = append(out, a)
	}
	return out, repaired
}
