package rpc_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pointchain/crypto"
	"pointchain/ledger"
	"pointchain/rpc"
	"pointchain/state"
	"pointchain/storage"
)

const testToken = "test-secret"

func testAddr(b byte) string {
	raw := make([]byte, crypto.IdentityLength)
	raw[0] = b
	return crypto.NewAddress(raw).String()
}

func newTestServer(t *testing.T) (*httptest.Server, *ledger.Engine) {
	t.Helper()
	engine := ledger.NewEngine(state.NewManager(storage.NewMemDB()))
	engine.SetClock(func() time.Time { return time.Unix(1_700_000_000, 0) })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := rpc.NewServer(engine, testToken, logger)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, engine
}

func call(t *testing.T, ts *httptest.Server, token, method string, params interface{}) (*http.Response, rpc.RPCResponse) {
	t.Helper()
	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		req["params"] = []interface{}{params}
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	httpReq, err := http.NewRequest(http.MethodPost, ts.URL, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(httpReq)
	if err != nil {
		t.Fatalf("perform request: %v", err)
	}
	defer resp.Body.Close()
	var rpcResp rpc.RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, rpcResp
}

func initPlatformOverRPC(t *testing.T, ts *httptest.Server, admin, treasury string) {
	t.Helper()
	_, resp := call(t, ts, testToken, "ledger_initializePlatform", map[string]interface{}{
		"admin":               admin,
		"treasury":            treasury,
		"tokenDecimals":       6,
		"maxSupply":           "1000000000000",
		"baseMintFee":         "5000",
		"feeRatePerThousand":  "1000",
		"nativeToPointsRatio": "100",
	})
	if resp.Error != nil {
		t.Fatalf("initialize platform: %+v", resp.Error)
	}
}

func TestInitializeAndQueryPlatform(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := testAddr(0x01)
	treasury := testAddr(0x02)
	initPlatformOverRPC(t, ts, admin, treasury)

	httpResp, resp := call(t, ts, "", "ledger_getPlatform", nil)
	if httpResp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", httpResp.StatusCode)
	}
	if resp.Error != nil {
		t.Fatalf("query platform: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	if result["admin"] != admin {
		t.Fatalf("admin mismatch: got %v want %s", result["admin"], admin)
	}
	if result["active"] != true {
		t.Fatalf("expected platform to start active")
	}
	if result["currentSupply"] != "0" {
		t.Fatalf("expected zero supply, got %v", result["currentSupply"])
	}
}

func TestMutationRequiresAuth(t *testing.T) {
	ts, _ := newTestServer(t)
	httpResp, resp := call(t, ts, "", "ledger_initializePlatform", map[string]interface{}{
		"admin":               testAddr(0x01),
		"treasury":            testAddr(0x02),
		"tokenDecimals":       6,
		"maxSupply":           "1000",
		"baseMintFee":         "0",
		"feeRatePerThousand":  "0",
		"nativeToPointsRatio": "1",
	})
	if httpResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", httpResp.StatusCode)
	}
	if resp.Error == nil {
		t.Fatalf("expected error response")
	}

	httpResp, _ = call(t, ts, "wrong-token", "ledger_setPlatformActive", map[string]interface{}{
		"caller": testAddr(0x01),
		"active": false,
	})
	if httpResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", httpResp.StatusCode)
	}
}

func TestMethodNotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	httpResp, resp := call(t, ts, "", "ledger_unknown", nil)
	if httpResp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", httpResp.StatusCode)
	}
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Fatalf("expected method-not-found error, got %+v", resp.Error)
	}
}

func TestInvalidParams(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := testAddr(0x01)
	initPlatformOverRPC(t, ts, admin, testAddr(0x02))

	httpResp, resp := call(t, ts, testToken, "ledger_registerMerchant", map[string]interface{}{
		"caller":        admin,
		"merchant":      "not-a-bech32-address",
		"mintAllowance": "100",
	})
	if httpResp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", httpResp.StatusCode)
	}
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected invalid-params error, got %+v", resp.Error)
	}

	httpResp, resp = call(t, ts, testToken, "ledger_mintPoints", map[string]interface{}{
		"merchant": testAddr(0x03),
		"consumer": testAddr(0x04),
		"amount":   "-5",
	})
	if httpResp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative amount, got %d", httpResp.StatusCode)
	}
	if resp.Error == nil || !strings.Contains(resp.Error.Message, "amount") {
		t.Fatalf("expected amount error, got %+v", resp.Error)
	}
}

func TestUnauthorizedAdminMapsToForbidden(t *testing.T) {
	ts, _ := newTestServer(t)
	initPlatformOverRPC(t, ts, testAddr(0x01), testAddr(0x02))

	httpResp, resp := call(t, ts, testToken, "ledger_registerMerchant", map[string]interface{}{
		"caller":        testAddr(0x09),
		"merchant":      testAddr(0x0a),
		"mintAllowance": "100",
	})
	if httpResp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", httpResp.StatusCode)
	}
	if resp.Error == nil || resp.Error.Code != -32001 {
		t.Fatalf("expected unauthorized code, got %+v", resp.Error)
	}
}

func TestMintFlowOverRPC(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := testAddr(0x01)
	merchant := testAddr(0x10)
	consumer := testAddr(0x20)
	initPlatformOverRPC(t, ts, admin, testAddr(0x02))

	_, resp := call(t, ts, testToken, "ledger_registerMerchant", map[string]interface{}{
		"caller":        admin,
		"merchant":      merchant,
		"mintAllowance": "100000000000",
	})
	if resp.Error != nil {
		t.Fatalf("register merchant: %+v", resp.Error)
	}

	_, resp = call(t, ts, testToken, "ledger_creditNative", map[string]interface{}{
		"caller":  admin,
		"account": merchant,
		"amount":  "1000000000",
	})
	if resp.Error != nil {
		t.Fatalf("credit native: %+v", resp.Error)
	}

	_, resp = call(t, ts, testToken, "ledger_mintPoints", map[string]interface{}{
		"merchant":  merchant,
		"consumer":  consumer,
		"amount":    "1000000",
		"reference": "order-42",
	})
	if resp.Error != nil {
		t.Fatalf("mint points: %+v", resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	if result["consumerBalance"] != "1000000" {
		t.Fatalf("consumer balance mismatch: %v", result["consumerBalance"])
	}
	// base 5_000 + (1_000_000 / 1_000) * 1_000
	if result["feePaid"] != "1005000" {
		t.Fatalf("fee mismatch: %v", result["feePaid"])
	}

	_, resp = call(t, ts, "", "ledger_getBalance", map[string]interface{}{
		"address": consumer,
	})
	if resp.Error != nil {
		t.Fatalf("get balance: %+v", resp.Error)
	}
	balance := resp.Result.(map[string]interface{})
	if balance["amount"] != "1000000" {
		t.Fatalf("queried balance mismatch: %v", balance["amount"])
	}
}

func TestLedgerErrorsSurfaceWithServerCode(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := testAddr(0x01)
	initPlatformOverRPC(t, ts, admin, testAddr(0x02))

	httpResp, resp := call(t, ts, testToken, "ledger_initializePlatform", map[string]interface{}{
		"admin":               admin,
		"treasury":            testAddr(0x02),
		"tokenDecimals":       6,
		"maxSupply":           "1000",
		"baseMintFee":         "0",
		"feeRatePerThousand":  "0",
		"nativeToPointsRatio": "1",
	})
	if httpResp.StatusCode != http.StatusOK {
		t.Fatalf("domain errors should keep 200, got %d", httpResp.StatusCode)
	}
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("expected server error code, got %+v", resp.Error)
	}
	if !strings.Contains(resp.Error.Message, "already initialized") {
		t.Fatalf("unexpected message: %s", resp.Error.Message)
	}
}

func TestListMerchants(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := testAddr(0x01)
	initPlatformOverRPC(t, ts, admin, testAddr(0x02))
	for _, b := range []byte{0x10, 0x11, 0x12} {
		_, resp := call(t, ts, testToken, "ledger_registerMerchant", map[string]interface{}{
			"caller":        admin,
			"merchant":      testAddr(b),
			"mintAllowance": "0",
		})
		if resp.Error != nil {
			t.Fatalf("register merchant %#x: %+v", b, resp.Error)
		}
	}
	_, resp := call(t, ts, "", "ledger_listMerchants", nil)
	if resp.Error != nil {
		t.Fatalf("list merchants: %+v", resp.Error)
	}
	merchants, ok := resp.Result.([]interface{})
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	if len(merchants) != 3 {
		t.Fatalf("expected 3 merchants, got %d", len(merchants))
	}
}
