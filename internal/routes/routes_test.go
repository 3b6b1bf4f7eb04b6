package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/boyw5785/gift-coin/internal/config"
	"github.com/boyw5785/gift-coin/internal/logging"
)

const (
	testAdminSecret = "test-admin-secret"
	managerID       = "mgr-1"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	cfg := config.Config{
		AppName:     "GiftCoin",
		AppEnv:      "development",
		AdminSecret: testAdminSecret,
		ValueSecret: "test-value-secret",
	}
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

func adminHeaders() map[string]string {
	return map[string]string{fiber.HeaderAuthorization: "Bearer " + testAdminSecret}
}

func managerHeaders() map[string]string {
	return map[string]string{"X-Manager-ID": managerID}
}

func TestMetadataEndpoint(t *testing.T) {
	app := setupTestApp(t)

	status, body := doJSON(t, app, fiber.MethodGet, "/api/v1/token", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["symbol"] != "GIFT" || body["decimals"] != float64(9) {
		t.Fatalf("unexpected metadata: %v", body)
	}
}

func TestManagerRoutesRequireAdminCapability(t *testing.T) {
	app := setupTestApp(t)

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/managers", fiber.Map{"id": managerID}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credential, got %d", status)
	}

	bad := map[string]string{fiber.HeaderAuthorization: "Bearer wrong"}
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/managers", fiber.Map{"id": managerID}, bad)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad credential, got %d", status)
	}

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/managers", fiber.Map{"id": managerID}, adminHeaders())
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/managers", fiber.Map{"id": managerID}, adminHeaders())
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", status)
	}

	// Membership checks stay public.
	status, body := doJSON(t, app, fiber.MethodGet, "/api/v1/managers/"+managerID, nil, nil)
	if status != http.StatusOK || body["authorized"] != true {
		t.Fatalf("expected public authorized=true, got %d %v", status, body)
	}

	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/v1/managers/"+managerID, nil, adminHeaders())
	if status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/v1/managers/"+managerID, nil, adminHeaders())
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 on missing manager, got %d", status)
	}
}

func TestMintRejectedForNonManager(t *testing.T) {
	app := setupTestApp(t)

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/mint",
		fiber.Map{"recipient": "acct:alice", "amount": 100}, managerHeaders())
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}

	status, body := doJSON(t, app, fiber.MethodGet, "/api/v1/supply", nil, nil)
	if status != http.StatusOK || body["supply"] != float64(0) {
		t.Fatalf("supply changed after rejected mint: %v", body)
	}
}

func TestGiftFlowOverHTTP(t *testing.T) {
	app := setupTestApp(t)

	if status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/managers", fiber.Map{"id": managerID}, adminHeaders()); status != http.StatusCreated {
		t.Fatalf("add manager failed: %d", status)
	}

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/mint",
		fiber.Map{"recipient": "acct:alice", "amount": 100}, managerHeaders())
	if status != http.StatusCreated {
		t.Fatalf("mint failed: %d %v", status, body)
	}
	minted, _ := body["value"].(string)
	if minted == "" {
		t.Fatalf("expected bearer value in mint response")
	}
	if body["balance"] != float64(100) || body["supply"] != float64(100) {
		t.Fatalf("unexpected mint response: %v", body)
	}

	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/split",
		fiber.Map{"value": minted, "amount": 40}, nil)
	if status != http.StatusOK {
		t.Fatalf("split failed: %d %v", status, body)
	}
	gift, _ := body["value"].(string)
	rest, _ := body["remainder"].(string)
	if gift == "" || rest == "" {
		t.Fatalf("expected two bearer values from split")
	}

	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/transfer",
		fiber.Map{"value": gift, "recipient": "acct:bob", "sender": "acct:alice"}, nil)
	if status != http.StatusOK {
		t.Fatalf("transfer failed: %d %v", status, body)
	}
	if body["from_balance"] != float64(60) || body["to_balance"] != float64(40) {
		t.Fatalf("unexpected transfer response: %v", body)
	}
	bobValue, _ := body["value"].(string)

	// The consumed gift value must not be spendable again.
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/transfer",
		fiber.Map{"value": gift, "recipient": "acct:carol", "sender": "acct:alice"}, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on double spend, got %d", status)
	}

	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/burn",
		fiber.Map{"recipient": "acct:bob", "value": bobValue}, managerHeaders())
	if status != http.StatusOK {
		t.Fatalf("burn failed: %d %v", status, body)
	}
	if body["balance"] != float64(0) || body["supply"] != float64(60) {
		t.Fatalf("unexpected burn response: %v", body)
	}

	for account, want := range map[string]float64{"acct:alice": 60, "acct:bob": 0} {
		status, body = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/balances/%s", account), nil, nil)
		if status != http.StatusOK || body["balance"] != want {
			t.Fatalf("balance of %s: %d %v", account, status, body)
		}
	}
}

func TestBurnInsufficientOverHTTP(t *testing.T) {
	app := setupTestApp(t)

	if status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/managers", fiber.Map{"id": managerID}, adminHeaders()); status != http.StatusCreated {
		t.Fatalf("add manager failed")
	}

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/mint",
		fiber.Map{"recipient": "acct:alice", "amount": 1000}, managerHeaders())
	if status != http.StatusCreated {
		t.Fatalf("mint failed: %d", status)
	}
	value, _ := body["value"].(string)

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/burn",
		fiber.Map{"recipient": "acct:bob", "value": value}, managerHeaders())
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 burning against empty account, got %d", status)
	}

	status, body = doJSON(t, app, fiber.MethodGet, "/api/v1/supply", nil, nil)
	if status != http.StatusOK || body["supply"] != float64(1000) {
		t.Fatalf("state changed after failed burn: %v", body)
	}
}

func TestAdjustBalanceOverHTTP(t *testing.T) {
	app := setupTestApp(t)

	if status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/managers", fiber.Map{"id": managerID}, adminHeaders()); status != http.StatusCreated {
		t.Fatalf("add manager failed")
	}

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/balances/acct:alice/adjust",
		fiber.Map{"amount": 75, "increase": true}, managerHeaders())
	if status != http.StatusOK || body["balance"] != float64(75) {
		t.Fatalf("adjust failed: %d %v", status, body)
	}

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/balances/acct:alice/adjust",
		fiber.Map{"amount": 75, "increase": true}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 without manager identity, got %d", status)
	}
}
