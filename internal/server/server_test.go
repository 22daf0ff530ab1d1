package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/congo_atm/internal/config"
	"github.com/congo-pay/congo_atm/internal/logging"
	"github.com/congo-pay/congo_atm/internal/storage"
)

type accountBody struct {
	Username     string          `json:"username"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []struct {
		Type   string          `json:"type"`
		Amount decimal.Decimal `json:"amount"`
		Date   string          `json:"date"`
	} `json:"transactions"`
}

type testClient struct {
	t   *testing.T
	app *fiber.App
}

func newTestClient(t *testing.T, kv storage.KV, cache *redis.Client) *testClient {
	t.Helper()
	cfg := config.Config{AppName: "test", AppEnv: "test", StorageBackend: storage.BackendMemory, StorageKey: "atm-users"}
	srv, err := New(context.Background(), cfg, kv, cache, logging.Discard())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return &testClient{t: t, app: srv.App()}
}

func (tc *testClient) do(method, path, token, body string, headers map[string]string) (int, []byte) {
	tc.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := tc.app.Test(req)
	if err != nil {
		tc.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		tc.t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, payload
}

func (tc *testClient) login(username, pin string) string {
	tc.t.Helper()
	status, payload := tc.do(http.MethodPost, "/api/v1/session", "", `{"username":"`+username+`","pin":"`+pin+`"}`, nil)
	if status != http.StatusOK {
		tc.t.Fatalf("login %s: status %d body %s", username, status, payload)
	}
	var out struct {
		Token   string      `json:"token"`
		Account accountBody `json:"account"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		tc.t.Fatalf("decode login: %v", err)
	}
	if out.Token == "" || out.Account.Username != username {
		tc.t.Fatalf("unexpected login response: %s", payload)
	}
	return out.Token
}

func decodeAccount(t *testing.T, payload []byte) accountBody {
	t.Helper()
	var out accountBody
	if err := json.Unmarshal(payload, &out); err != nil {
		t.Fatalf("decode account: %v (%s)", err, payload)
	}
	return out
}

func TestATMFlow(t *testing.T) {
	kv := storage.NewMemory()
	tc := newTestClient(t, kv, nil)

	if status, _ := tc.do(http.MethodPost, "/api/v1/session", "", `{"username":"user1","pin":"0000"}`, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong pin, got %d", status)
	}

	token := tc.login("user1", "1111")

	status, payload := tc.do(http.MethodGet, "/api/v1/account", token, "", nil)
	if status != http.StatusOK {
		t.Fatalf("get account: %d %s", status, payload)
	}
	if strings.Contains(string(payload), "1111") {
		t.Fatalf("pin leaked in response: %s", payload)
	}
	if acct := decodeAccount(t, payload); !acct.Balance.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("expected 3000, got %s", acct.Balance)
	}

	status, payload = tc.do(http.MethodPost, "/api/v1/account/deposit", token, `{"amount":500}`, nil)
	if status != http.StatusOK {
		t.Fatalf("deposit: %d %s", status, payload)
	}
	if acct := decodeAccount(t, payload); !acct.Balance.Equal(decimal.NewFromInt(3500)) || len(acct.Transactions) != 1 {
		t.Fatalf("unexpected account after deposit: %s", payload)
	}

	if status, _ := tc.do(http.MethodPost, "/api/v1/account/withdraw", token, `{"amount":4000}`, nil); status != http.StatusConflict {
		t.Fatalf("expected 409 for overdraft, got %d", status)
	}
	for _, body := range []string{`{"amount":""}`, `{"amount":"abc"}`, `{"amount":-5}`, `{"amount":"1e3000000"}`, `{"amount":0.001}`, `{}`} {
		if status, _ := tc.do(http.MethodPost, "/api/v1/account/deposit", token, body, nil); status != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, status)
		}
	}

	status, payload = tc.do(http.MethodPost, "/api/v1/account/withdraw", token, `{"amount":"3500"}`, nil)
	if status != http.StatusOK {
		t.Fatalf("withdraw: %d %s", status, payload)
	}
	acct := decodeAccount(t, payload)
	if !acct.Balance.IsZero() || len(acct.Transactions) != 2 {
		t.Fatalf("unexpected account after withdraw: %s", payload)
	}
	if acct.Transactions[0].Type != "Withdraw" || !acct.Transactions[0].Amount.Equal(decimal.NewFromInt(3500)) {
		t.Fatalf("expected newest transaction first: %s", payload)
	}

	stored, err := kv.Get(context.Background(), "atm-users")
	if err != nil {
		t.Fatalf("read storage: %v", err)
	}
	if !strings.Contains(stored, `"type":"Withdraw"`) {
		t.Fatalf("expected withdrawal persisted, got %s", stored)
	}

	if status, _ := tc.do(http.MethodDelete, "/api/v1/session", token, "", nil); status != http.StatusOK {
		t.Fatalf("logout: %d", status)
	}
	if status, _ := tc.do(http.MethodGet, "/api/v1/account", token, "", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", status)
	}
}

func TestDepositIdempotencyKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	tc := newTestClient(t, storage.NewMemory(), cache)
	token := tc.login("admin", "1234")
	headers := map[string]string{"Idempotency-Key": "deposit-1"}

	_, first := tc.do(http.MethodPost, "/api/v1/account/deposit", token, `{"amount":100}`, headers)
	status, second := tc.do(http.MethodPost, "/api/v1/account/deposit", token, `{"amount":100}`, headers)
	if status != http.StatusOK || string(first) != string(second) {
		t.Fatalf("expected replayed response, got %d %s", status, second)
	}

	_, payload := tc.do(http.MethodGet, "/api/v1/account", token, "", nil)
	if acct := decodeAccount(t, payload); !acct.Balance.Equal(decimal.NewFromInt(5100)) {
		t.Fatalf("expected a single deposit, balance %s", acct.Balance)
	}
}

func TestHealthz(t *testing.T) {
	tc := newTestClient(t, storage.NewMemory(), nil)
	status, payload := tc.do(http.MethodGet, "/healthz", "", "", nil)
	if status != http.StatusOK {
		t.Fatalf("healthz: %d %s", status, payload)
	}
}
