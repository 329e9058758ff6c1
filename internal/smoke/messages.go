package smoke

import (
	"encoding/json"
	"fmt"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/mcp-proxy-devtools/pkg/protocol"
)

const (
	InitializeID = 1
	PingID       = 2
)

func newRequest(method string, id uint64, notif bool, params interface{}) (*jsonrpc2.Request, error) {
	req := &jsonrpc2.Request{
		Method: method,
		Notif:  notif,
	}
	if !notif {
		req.ID = jsonrpc2.ID{Num: id}
	}
	if err := req.SetParams(params); err != nil {
		return nil, fmt.Errorf("failed to encode %s params: %w", method, err)
	}
	return req, nil
}

// InitializeRequest announces an empty capability set.
func InitializeRequest(protocolVersion, clientName, clientVersion string) (*jsonrpc2.Request, error) {
	return newRequest(protocol.MethodInitialize, InitializeID, false, protocol.InitializeParams{
		ProtocolVersion: protocolVersion,
		Capabilities:    map[string]interface{}{},
		ClientInfo: protocol.ClientInfo{
			Name:    clientName,
			Version: clientVersion,
		},
	})
}

func InitializedNotification() (*jsonrpc2.Request, error) {
	return newRequest(protocol.MethodInitialized, 0, true, protocol.EmptyParams{})
}

func PingRequest(id uint64) (*jsonrpc2.Request, error) {
	return newRequest(protocol.MethodPing, id, false, protocol.EmptyParams{})
}

// EncodeLine renders msg as a single line terminated by '\n'.
func EncodeLine(msg *jsonrpc2.Request) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", msg.Method, err)
	}
	return append(data, '\n'), nil
}
