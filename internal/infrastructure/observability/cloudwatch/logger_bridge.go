package cloudwatch

import (
	"context"

	"github.com/dreschagin/netpulse/internal/application/port"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// LoggerBridge adapts a port.LogPublisher to the logger.Publisher interface
// so application logs can be forwarded to CloudWatch Logs.
type LoggerBridge struct {
	publisher port.LogPublisher
}

func NewLoggerBridge(publisher port.LogPublisher) *LoggerBridge {
	return &LoggerBridge{publisher: publisher}
}

// PublishBatch converts logger entries into port log entries and forwards them.
func (b *LoggerBridge) PublishBatch(ctx context.Context, entries []logger.Entry) error {
	converted := make([]port.LogEntry, 0, len(entries))
	for _, entry := range entries {
		converted = append(converted, port.LogEntry{
			Timestamp: entry.Timestamp,
			Level:     port.LogLevel(entry.Level),
			Message:   entry.Message,
			Fields:    entry.Fields,
		})
	}
	return b.publisher.PublishBatch(ctx, converted)
}
