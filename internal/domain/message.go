package domain

import (
	"context"
	"time"
)

// RawMessage is a message read from the social report topic, before decoding.
// Commit acknowledges the message to the broker; it is nil for sources that
// need no acknowledgement.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Headers   map[string]string
	Commit    func(ctx context.Context) error
}
