package websocket

import (
	"context"
	"time"

	"tpodash/pkg/contracts/domain"
)

// Connection is the subset of a gorilla connection the pumps use, so tests can
// substitute a mock.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// EventPublisher pushes dataset change events to connected dashboards.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event domain.DatasetEvent)
}
