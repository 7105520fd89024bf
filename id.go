package sage

import (
	"time"

	"github.com/google/uuid"
)

// NewSessionID generates a globally unique, time-sortable UUIDv7 (RFC 9562)
// for grouping interactions into sessions.
func NewSessionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NowUnixMilli returns the current time as epoch milliseconds, the timestamp
// representation used by all entity records.
func NowUnixMilli() int64 {
	return time.Now().UnixMilli()
}
