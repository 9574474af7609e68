package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deusflow/trenddigest/internal/digest"
	"github.com/deusflow/trenddigest/internal/metrics"
)

// DigestWriter persists a finished digest.
type DigestWriter interface {
	Write(ctx context.Context, d *digest.Digest) error
}

// NamedWriter is a best-effort writer with a name for logs.
type NamedWriter struct {
	Name   string
	Writer DigestWriter
}

// MultiWriter writes to Primary, whose failure fails the write, and then to
// each Secondary, whose failures are only logged.
type MultiWriter struct {
	Primary     DigestWriter
	Secondaries []NamedWriter
	Logger      *slog.Logger
}

func (m *MultiWriter) Write(ctx context.Context, d *digest.Digest) error {
	if err := m.Primary.Write(ctx, d); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	metrics.Global.IncrementDigestsWritten()

	for _, w := range m.Secondaries {
		if err := w.Writer.Write(ctx, d); err != nil {
			m.logger().Warn("secondary digest write failed", "writer", w.Name, "error", err)
			continue
		}
		m.logger().Debug("digest written", "writer", w.Name)
	}
	return nil
}

func (m *MultiWriter) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
