package codec

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseNotification(t *testing.T) {
	body := `{"jsonrpc": "2.0", "method": "notifications/tools/list_changed"}`
	req := httptest.NewRequest("POST", "/api/notify", strings.NewReader(body))

	n, err := ParseNotification(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !n.IsToolListChanged() {
		t.Errorf("expected tool list changed notification, got method %q", n.Method)
	}
}

func TestParseNotificationIgnoresPayload(t *testing.T) {
	// Payloads are untrusted and preserved only as raw bytes.
	body := `{"jsonrpc": "2.0", "method": "notifications/tools/list_changed", "params": {"tools": ["fake"]}}`
	req := httptest.NewRequest("POST", "/api/notify", strings.NewReader(body))

	n, err := ParseNotification(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.Params) == 0 {
		t.Error("expected raw params to be preserved")
	}
}

func TestParseNotificationRejectsBadVersion(t *testing.T) {
	body := `{"jsonrpc": "1.0", "method": "notifications/tools/list_changed"}`
	req := httptest.NewRequest("POST", "/api/notify", strings.NewReader(body))

	if _, err := ParseNotification(req); err == nil {
		t.Error("expected error for wrong jsonrpc version")
	}
}

func TestParseNotificationRejectsMissingMethod(t *testing.T) {
	body := `{"jsonrpc": "2.0"}`
	req := httptest.NewRequest("POST", "/api/notify", strings.NewReader(body))

	if _, err := ParseNotification(req); err == nil {
		t.Error("expected error for missing method")
	}
}

func TestWriteJSONRPCError(t *testing.T) {
	rr := httptest.NewRecorder()
	if err := WriteJSONRPCError(rr, MethodNotFound, "", 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp JSONRPCResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("expected error field")
	}
	if resp.Error.Code != MethodNotFound {
		t.Errorf("expected code %d, got %d", MethodNotFound, resp.Error.Code)
	}
	if resp.Error.Message != "Method not found" {
		t.Errorf("expected default message, got %q", resp.Error.Message)
	}
	if resp.ID != 7 {
		t.Errorf("expected id 7, got %d", resp.ID)
	}
}
