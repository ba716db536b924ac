package metrics

import (
	"context"
	"fmt"
	"io"
)

// Client transmits a single record to a time-series backend. Buffering,
// batching and retries are the implementation's business, not the caller's.
type Client interface {
	WriteMetric(ctx context.Context, rec Record) error
}

// WriterClient dumps records to an io.Writer. Meant for tests and local debugging.
type WriterClient struct {
	out io.Writer
}

func NewWriterClient(writer io.Writer) *WriterClient {
	return &WriterClient{
		out: writer,
	}
}

func (c *WriterClient) WriteMetric(_ context.Context, rec Record) error {
	_, err := fmt.Fprintf(c.out, "%s\n", rec.String())
	return err
}

// NoopClient discards every record.
type NoopClient struct{}

func (NoopClient) WriteMetric(context.Context, Record) error { return nil }
