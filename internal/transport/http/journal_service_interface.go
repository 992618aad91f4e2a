package http

import (
	"context"
	"io"

	"gradebook/internal/roster"
	"gradebook/internal/services"
	"gradebook/internal/statistics"
	"gradebook/internal/tabular"
)

// JournalServiceInterface defines the journal operations the handlers use.
type JournalServiceInterface interface {
	Import(ctx context.Context, filename string, r io.Reader) (*services.ImportResult, error)
	List(ctx context.Context) roster.Snapshot
	Preview(ctx context.Context, limit int) services.Preview
	Get(ctx context.Context, index int) (roster.Record, error)
	Create(ctx context.Context, in roster.Input) (int, error)
	Update(ctx context.Context, index int, in roster.Input) error
	Delete(ctx context.Context, index int) error
	Statistics(ctx context.Context) (statistics.Report, error)
	Charts(ctx context.Context) ([]statistics.Series, error)
	Export(ctx context.Context, format tabular.Format, w io.Writer) error
}

var _ JournalServiceInterface = (*services.JournalService)(nil)
