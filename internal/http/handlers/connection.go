package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sunmind/sunmind/internal/conn"
)

// --- Connection status ---

// GetConnectionInput is the input for reading the socket status.
type GetConnectionInput struct{}

// ConnectionOutput is the output of every connection operation.
type ConnectionOutput struct {
	Body struct {
		Status string `json:"status" enum:"connecting,connected,disconnected,error" doc:"Telemetry socket status"`
	}
}

// ConnectInput is the input for opening the socket.
type ConnectInput struct{}

// DisconnectInput is the input for closing the socket.
type DisconnectInput struct{}

// Connection is the telemetry client as the HTTP layer drives it.
type Connection interface {
	Status() conn.Status
	Connect()
	Disconnect()
}

// ConnectionHandler implements telemetry socket HTTP handlers.
type ConnectionHandler struct {
	Conn Connection
	// Authenticated reports whether a token is available to connect with.
	Authenticated func() bool
}

func (h *ConnectionHandler) output() *ConnectionOutput {
	out := &ConnectionOutput{}
	out.Body.Status = string(h.Conn.Status())
	return out
}

// GetConnection returns the socket status.
func (h *ConnectionHandler) GetConnection(_ context.Context, _ *GetConnectionInput) (*ConnectionOutput, error) {
	return h.output(), nil
}

// Connect opens the socket and resets the reconnect budget. The dial runs
// in the background; poll the status or watch connection.status events.
func (h *ConnectionHandler) Connect(_ context.Context, _ *ConnectInput) (*ConnectionOutput, error) {
	if h.Authenticated != nil && !h.Authenticated() {
		return nil, huma.Error401Unauthorized("sign in before connecting")
	}
	h.Conn.Connect()
	return h.output(), nil
}

// Disconnect closes the socket and cancels any pending reconnect.
func (h *ConnectionHandler) Disconnect(_ context.Context, _ *DisconnectInput) (*ConnectionOutput, error) {
	h.Conn.Disconnect()
	return h.output(), nil
}

// Ensure ConnectionHandler implements the interface at compile time.
var _ ConnectionHandlers = (*ConnectionHandler)(nil)

// ConnectionHandlers defines the interface for telemetry socket operations.
type ConnectionHandlers interface {
	GetConnection(ctx context.Context, input *GetConnectionInput) (*ConnectionOutput, error)
	Connect(ctx context.Context, input *ConnectInput) (*ConnectionOutput, error)
	Disconnect(ctx context.Context, input *DisconnectInput) (*ConnectionOutput, error)
}
