package smoke

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decodeLine(t *testing.T, line []byte) map[string]interface{} {
	t.Helper()
	if !strings.HasSuffix(string(line), "\n") || strings.Count(string(line), "\n") != 1 {
		t.Fatalf("expected exactly one trailing newline: %q", line)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(line, &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", line, err)
	}
	return m
}

func TestInitializeRequest(t *testing.T) {
	msg, err := InitializeRequest("0.1.0", "test-client", "0.1.0")
	if err != nil {
		t.Fatal(err)
	}
	line, err := EncodeLine(msg)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      float64(1),
		"method":  "initialize",
		"params": map[string]interface{}{
			"protocolVersion": "0.1.0",
			"capabilities":    map[string]interface{}{},
			"clientInfo": map[string]interface{}{
				"name":    "test-client",
				"version": "0.1.0",
			},
		},
	}
	if diff := cmp.Diff(want, decodeLine(t, line)); diff != "" {
		t.Errorf("initialize mismatch (-want +got):\n%s", diff)
	}
}

func TestInitializedNotificationHasNoID(t *testing.T) {
	msg, err := InitializedNotification()
	if err != nil {
		t.Fatal(err)
	}
	line, err := EncodeLine(msg)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "initialized",
		"params":  map[string]interface{}{},
	}
	if diff := cmp.Diff(want, decodeLine(t, line)); diff != "" {
		t.Errorf("notification mismatch (-want +got):\n%s", diff)
	}
}

func TestPingRequest(t *testing.T) {
	msg, err := PingRequest(PingID)
	if err != nil {
		t.Fatal(err)
	}
	line, err := EncodeLine(msg)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      float64(2),
		"method":  "ping",
		"params":  map[string]interface{}{},
	}
	if diff := cmp.Diff(want, decodeLine(t, line)); diff != "" {
		t.Errorf("ping mismatch (-want +got):\n%s", diff)
	}
}
