package provider

import (
	"encoding/json"
	"fmt"

	bridge "github.com/RidgeA/dapp-bridge"
)

// RequestTopic is the single messenger topic carrying provider calls.
const RequestTopic = "providerRequest"

// EIP-1193 and JSON-RPC error codes used by the dispatcher.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeInvalidParams     = -32602
	CodeInternal          = -32603
)

type (
	Request struct {
		Method RPCMethod               `json:"method"`
		Params []json.RawMessage       `json:"params,omitempty"`
		ID     int64                   `json:"id"`
		Meta   *bridge.CallbackOptions `json:"meta,omitempty"`
	}

	// Response carries either Result or Error, never both.
	Response struct {
		ID     int64           `json:"id"`
		Result json.RawMessage `json:"result,omitempty"`
		Error  *RPCError       `json:"error,omitempty"`
	}

	RPCError struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data,omitempty"`
	}
)

func NewError(code int, format string, args ...interface{}) *RPCError {
	return &RPCError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// Param decodes the i-th positional parameter into v.
func (r Request) Param(i int, v interface{}) error {
	if i < 0 || i >= len(r.Params) {
		return NewError(CodeInvalidParams, "missing parameter %d for %s", i, r.Method)
	}
	if err := json.Unmarshal(r.Params[i], v); err != nil {
		return NewError(CodeInvalidParams, "parameter %d for %s: %v", i, r.Method, err)
	}
	return nil
}

func encodeParams(params []interface{}) ([]json.RawMessage, error) {
	if len(params) == 0 {
		return nil, nil
	}
	out := make([]json.RawMessage, 0, len(params))
	for i, p := range params {
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode parameter %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return out, nil
}
