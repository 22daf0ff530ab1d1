package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/congo-pay/congo_atm/internal/storage"
)

// DefaultStorageKey is the key the account record lives under.
const DefaultStorageKey = "atm-users"

// Repository reads and writes the account record in durable storage.
type Repository struct {
	kv     storage.KV
	key    string
	logger *slog.Logger
}

// NewRepository builds a repository storing the record under key.
func NewRepository(kv storage.KV, key string, logger *slog.Logger) *Repository {
	if key == "" {
		key = DefaultStorageKey
	}
	return &Repository{kv: kv, key: key, logger: logger}
}

// Load returns the stored collection. A missing record is seeded with the
// default accounts, a repaired record is written back immediately and an
// unreadable record is replaced by the default accounts.
func (r *Repository) Load(ctx context.Context) ([]Account, error) {
	raw, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, storage.ErrNotFound) {
		return r.seed(ctx, "no stored accounts")
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.key, err)
	}

	accounts, repaired, err := Decode([]byte(raw))
	if err != nil {
		r.logger.Warn("stored accounts unreadable, restoring defaults", slog.String("key", r.key), slog.Any("error", err))
		return r.seed(ctx, "unreadable record")
	}

	if repaired {
		r.logger.Warn("repaired stored accounts", slog.String("key", r.key), slog.Int("accounts", len(accounts)))
		if err := r.Persist(ctx, accounts); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

// Persist overwrites the stored record with accounts.
func (r *Repository) Persist(ctx context.Context, accounts []Account) error {
	payload, err := Encode(accounts)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, r.key, string(payload)); err != nil {
		return fmt.Errorf("write %s: %w", r.key, err)
	}
	return nil
}

func (r *Repository) seed(ctx context.Context, reason string) ([]Account, error) {
	accounts := DefaultAccounts()
	if err := r.Persist(ctx, accounts); err != nil {
		return nil, err
	}
	r.logger.Info("seeded default accounts", slog.String("key", r.key), slog.String("reason", reason))
	return accounts, nil
}
