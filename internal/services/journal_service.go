package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	apierrors "gradebook/internal/errors"
	"gradebook/internal/exporter"
	"gradebook/internal/infrastructure"
	"gradebook/internal/roster"
	"gradebook/internal/statistics"
	"gradebook/internal/tabular"
)

// Change actions published after a successful mutation.
const (
	ActionImport = "import"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// ChangeEvent describes a roster mutation. Index is -1 for imports.
type ChangeEvent struct {
	Action string `json:"action"`
	Index  int    `json:"index"`
	Count  int    `json:"count"`
}

// Notifier receives change events. Implementations must not block.
type Notifier interface {
	Publish(ctx context.Context, event ChangeEvent)
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, ChangeEvent) {}

// ImportResult summarizes a completed import.
type ImportResult struct {
	Filename string         `json:"filename"`
	Format   tabular.Format `json:"format"`
	Records  int            `json:"records"`
	Subjects []string       `json:"subjects"`
	Coerced  int            `json:"coerced_values"`
	Dropped  int            `json:"dropped_rows"`
}

// Preview is the head of the roster shown after an upload.
type Preview struct {
	Total    int             `json:"total"`
	Subjects []string        `json:"subjects"`
	Records  []roster.Record `json:"records"`
}

// JournalService exposes the grade journal operations.
type JournalService struct {
	store    *roster.Store
	notifier Notifier
	metrics  *infrastructure.BusinessMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewJournalService wires the store to notifications, metrics and tracing.
// notifier, metrics and tracer may be nil.
func NewJournalService(store *roster.Store, notifier Notifier, metrics *infrastructure.BusinessMetrics, tracer trace.Tracer, logger *slog.Logger) *JournalService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JournalService{
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		tracer:   tracer,
		logger:   infrastructure.WithComponent(logger, "journal_service"),
	}
}

// SetNotifier replaces the change notifier.
func (s *JournalService) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	s.notifier = n
}

// Import parses the file, replaces the whole roster with its records and
// persists the result. The format is chosen by the filename extension.
func (s *JournalService) Import(ctx context.Context, filename string, r io.Reader) (result *ImportResult, err error) {
	ctx, span := s.start(ctx, "import", attribute.String("journal.filename", filename))
	defer func(start time.Time) { s.finish(ctx, span, "import", start, err) }(time.Now())

	if r == nil {
		return nil, ErrNilReader
	}

	rows, format, err := tabular.ParseFile(filename, r)
	if err != nil {
		if !errors.Is(err, tabular.ErrUnsupportedFormat) && !errors.Is(err, tabular.ErrEmptyDataset) {
			err = apierrors.NewParsingError("failed to read journal file", err).WithContext("filename", filename)
		}
		infrastructure.WithError(s.logger, err).WarnContext(ctx, "import rejected",
			slog.String("filename", filename))
		return nil, err
	}

	ds, err := roster.Normalize(rows)
	if err != nil {
		return nil, err
	}

	if err := s.store.BulkReplace(ctx, ds); err != nil {
		return nil, s.storeError(err)
	}

	result = &ImportResult{
		Filename: filename,
		Format:   format,
		Records:  ds.Len(),
		Subjects: append([]string{}, ds.Subjects...),
		Coerced:  ds.Coerced,
		Dropped:  ds.Dropped,
	}

	if s.metrics != nil {
		attrs := metric.WithAttributes(attribute.String("format", string(format)))
		s.metrics.RecordsImported.Add(ctx, int64(ds.Len()), attrs)
		s.metrics.ValuesCoerced.Add(ctx, int64(ds.Coerced), attrs)
	}
	span.SetAttributes(
		attribute.String("journal.format", string(format)),
		attribute.Int("journal.records", ds.Len()),
	)

	s.logger.InfoContext(ctx, "Journal imported",
		slog.String("filename", filename),
		slog.String("format", string(format)),
		slog.Int("records", ds.Len()),
		slog.Int("subjects", len(ds.Subjects)),
		slog.Int("coerced_values", ds.Coerced),
		slog.Int("dropped_rows", ds.Dropped))

	s.changed(ctx, ChangeEvent{Action: ActionImport, Index: -1, Count: ds.Len()})
	return result, nil
}

// List returns a copy of the whole roster.
func (s *JournalService) List(ctx context.Context) roster.Snapshot {
	return s.store.Snapshot()
}

// Preview returns the first limit records and the total count.
func (s *JournalService) Preview(ctx context.Context, limit int) Preview {
	snap := s.store.Snapshot()
	head := snap.Head(limit)
	return Preview{Total: snap.Len(), Subjects: snap.Subjects, Records: head.Records}
}

// Get returns the record at index.
func (s *JournalService) Get(ctx context.Context, index int) (roster.Record, error) {
	return s.store.Get(index)
}

// Create adds a student and returns its index.
func (s *JournalService) Create(ctx context.Context, in roster.Input) (index int, err error) {
	ctx, span := s.start(ctx, "create")
	defer func(start time.Time) { s.finish(ctx, span, "create", start, err) }(time.Now())

	index, err = s.store.Create(ctx, in)
	if err != nil {
		return -1, s.storeError(err)
	}

	s.logger.InfoContext(ctx, "Student created",
		slog.Int("index", index),
		slog.String("class", in.ClassLabel))
	s.changed(ctx, ChangeEvent{Action: ActionCreate, Index: index, Count: s.store.Len()})
	return index, nil
}

// Update replaces the student at index.
func (s *JournalService) Update(ctx context.Context, index int, in roster.Input) (err error) {
	ctx, span := s.start(ctx, "update", attribute.Int("journal.index", index))
	defer func(start time.Time) { s.finish(ctx, span, "update", start, err) }(time.Now())

	if err = s.store.Update(ctx, index, in); err != nil {
		return s.storeError(err)
	}

	s.logger.InfoContext(ctx, "Student updated", slog.Int("index", index))
	s.changed(ctx, ChangeEvent{Action: ActionUpdate, Index: index, Count: s.store.Len()})
	return nil
}

// Delete removes the student at index.
func (s *JournalService) Delete(ctx context.Context, index int) (err error) {
	ctx, span := s.start(ctx, "delete", attribute.Int("journal.index", index))
	defer func(start time.Time) { s.finish(ctx, span, "delete", start, err) }(time.Now())

	if err = s.store.Delete(ctx, index); err != nil {
		return s.storeError(err)
	}

	s.logger.InfoContext(ctx, "Student deleted", slog.Int("index", index))
	s.changed(ctx, ChangeEvent{Action: ActionDelete, Index: index, Count: s.store.Len()})
	return nil
}

// Statistics computes per-subject and overall summaries.
func (s *JournalService) Statistics(ctx context.Context) (statistics.Report, error) {
	_, span := s.start(ctx, "statistics")
	defer span.End()

	snap := s.store.Snapshot()
	if snap.Empty() {
		return statistics.Report{}, ErrRosterEmpty
	}
	return statistics.Compute(snap), nil
}

// Charts returns the per-subject mean series by class.
func (s *JournalService) Charts(ctx context.Context) ([]statistics.Series, error) {
	_, span := s.start(ctx, "charts")
	defer span.End()

	snap := s.store.Snapshot()
	if snap.Empty() {
		return nil, ErrRosterEmpty
	}
	return statistics.ChartSeries(snap), nil
}

// Export writes the roster to w in format.
func (s *JournalService) Export(ctx context.Context, format tabular.Format, w io.Writer) (err error) {
	ctx, span := s.start(ctx, "export", attribute.String("journal.format", string(format)))
	defer func(start time.Time) { s.finish(ctx, span, "export", start, err) }(time.Now())

	snap := s.store.Snapshot()
	if snap.Empty() {
		return ErrRosterEmpty
	}
	if err = exporter.Write(w, format, snap); err != nil {
		return err
	}

	s.exported(ctx, format, snap.Len())
	return nil
}

// ExportFile saves the roster under the writer's directory and returns the
// file path.
func (s *JournalService) ExportFile(ctx context.Context, format tabular.Format, fw *exporter.FileWriter) (path string, err error) {
	ctx, span := s.start(ctx, "export", attribute.String("journal.format", string(format)))
	defer func(start time.Time) { s.finish(ctx, span, "export", start, err) }(time.Now())

	snap := s.store.Snapshot()
	if snap.Empty() {
		return "", ErrRosterEmpty
	}
	if path, err = fw.Save(format, snap); err != nil {
		return "", err
	}

	s.exported(ctx, format, snap.Len())
	return path, nil
}

func (s *JournalService) exported(ctx context.Context, format tabular.Format, records int) {
	if s.metrics != nil {
		s.metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", string(format))))
	}
	s.logger.InfoContext(ctx, "Journal exported",
		slog.String("format", string(format)),
		slog.Int("records", records))
}

func (s *JournalService) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("journal.operation", op))
	return s.tracer.Start(ctx, "journal."+op, trace.WithAttributes(attrs...))
}

func (s *JournalService) finish(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	defer span.End()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if s.metrics != nil && errors.Is(err, roster.ErrValidation) {
			s.metrics.ValidationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
		}
	}
	infrastructure.RecordOperationMetrics(ctx, s.metrics, op, time.Since(start), err)
}

func (s *JournalService) changed(ctx context.Context, event ChangeEvent) {
	if s.metrics != nil {
		s.metrics.RosterSize.Record(ctx, int64(event.Count))
	}
	s.notifier.Publish(ctx, event)
}

// storeError keeps domain errors as they are and marks everything else as
// a storage failure.
func (s *JournalService) storeError(err error) error {
	if errors.Is(err, roster.ErrValidation) || errors.Is(err, roster.ErrIndexOutOfRange) {
		return err
	}
	return apierrors.NewStorageError("failed to persist journal", err)
}

// Load restores the persisted roster. It reports whether records were found.
func (s *JournalService) Load(ctx context.Context) bool {
	ok := s.store.Load(ctx)
	if s.metrics != nil {
		s.metrics.RosterSize.Record(ctx, int64(s.store.Len()))
	}
	return ok
}

// Size returns the number of students.
func (s *JournalService) Size() int { return s.store.Len() }
