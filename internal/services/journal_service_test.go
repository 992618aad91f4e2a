package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apierrors "gradebook/internal/errors"
	"gradebook/internal/exporter"
	"gradebook/internal/infrastructure"
	"gradebook/internal/roster"
	"gradebook/internal/shared/testutil"
	"gradebook/internal/storage"
	"gradebook/internal/tabular"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (n *recordingNotifier) Publish(_ context.Context, e ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) Events() []ChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ChangeEvent(nil), n.events...)
}

type failingSlot struct {
	*storage.Memory
	err error
}

func (f *failingSlot) Put(context.Context, string, []byte) error { return f.err }
func (f *failingSlot) Ping(context.Context) error                { return f.err }

type harness struct {
	svc      *JournalService
	slot     storage.Slot
	notifier *recordingNotifier
	reader   *sdkmetric.ManualReader
	spans    *tracetest.SpanRecorder
	logs     *testutil.BufferedSlogHandler
}

func newHarness(t *testing.T, slot storage.Slot) *harness {
	t.Helper()
	if slot == nil {
		slot = storage.NewMemory()
	}

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		_ = tp.Shutdown(context.Background())
	})

	metrics, err := infrastructure.CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	logger, logs := testutil.NewTestLogger(t)
	notifier := &recordingNotifier{}
	store := roster.NewStore(slot, "", logger)
	svc := NewJournalService(store, notifier, metrics, tp.Tracer("test"), logger)

	return &harness{svc: svc, slot: slot, notifier: notifier, reader: reader, spans: spans, logs: logs}
}

func (h *harness) counter(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func importSample(t *testing.T, h *harness) *ImportResult {
	t.Helper()
	csv := testutil.DelimitedText(testutil.SampleTable(), ",")
	res, err := h.svc.Import(context.Background(), "journal.csv", strings.NewReader(csv))
	require.NoError(t, err)
	return res
}

func TestJournalService_Import(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     func(t *testing.T) []byte
		format   tabular.Format
	}{
		{"csv", "journal.csv", func(*testing.T) []byte {
			return []byte(testutil.DelimitedText(testutil.SampleTable(), ","))
		}, tabular.FormatCSV},
		{"txt semicolon", "journal.txt", func(*testing.T) []byte {
			return []byte(testutil.DelimitedText(testutil.SampleTable(), ";"))
		}, tabular.FormatText},
		{"xlsx", "journal.xlsx", func(t *testing.T) []byte {
			return testutil.WorkbookBytes(t, testutil.SampleTable())
		}, tabular.FormatWorkbook},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)

			res, err := h.svc.Import(context.Background(), tt.filename, bytes.NewReader(tt.body(t)))
			require.NoError(t, err)

			assert.Equal(t, tt.format, res.Format)
			assert.Equal(t, 5, res.Records)
			assert.Equal(t, []string{"Математика", "Физика"}, res.Subjects)

			snap := h.svc.List(context.Background())
			assert.Equal(t, 5, snap.Len())
			assert.Equal(t, "Иванов Иван", snap.Records[0].FullName)

			events := h.notifier.Events()
			require.Len(t, events, 1)
			assert.Equal(t, ChangeEvent{Action: ActionImport, Index: -1, Count: 5}, events[0])
			assert.Equal(t, int64(5), h.counter(t, "journal_records_imported_total"))
			assert.True(t, h.logs.ContainsMessage("Journal imported"))
		})
	}
}

func TestJournalService_ImportReplacesRoster(t *testing.T) {
	h := newHarness(t, nil)
	importSample(t, h)

	_, err := h.svc.Import(context.Background(), "small.csv",
		strings.NewReader("ФИО,Класс,Химия\nНовиков,3В,abc"))
	require.NoError(t, err)

	snap := h.svc.List(context.Background())
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, []string{"Химия"}, snap.Subjects)
	assert.False(t, snap.Records[0].Grade("Химия").IsSet())
	assert.Equal(t, int64(1), h.counter(t, "journal_values_coerced_total"))
}

func TestJournalService_ImportErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     string
		target   error
	}{
		{"unsupported extension", "journal.pdf", "ФИО,Класс\nИванов,1А", tabular.ErrUnsupportedFormat},
		{"no admissible rows", "journal.csv", "ФИО,Класс\n,1А", tabular.ErrEmptyDataset},
		{"missing identity columns", "journal.txt", "Имя\tГруппа\nИванов\t1А", tabular.ErrEmptyDataset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			importSample(t, h)

			_, err := h.svc.Import(context.Background(), tt.filename, strings.NewReader(tt.body))
			assert.ErrorIs(t, err, tt.target)
			var appErr *apierrors.AppError
			assert.False(t, errors.As(err, &appErr), "content rejections stay typed")
			assert.Equal(t, 5, h.svc.Size(), "failed import leaves roster unchanged")
			assert.Len(t, h.notifier.Events(), 1)
		})
	}

	h := newHarness(t, nil)
	_, err := h.svc.Import(context.Background(), "journal.csv", nil)
	assert.ErrorIs(t, err, ErrNilReader)
}

func TestJournalService_ImportUnreadableFile(t *testing.T) {
	h := newHarness(t, nil)
	importSample(t, h)

	readErr := errors.New("connection reset")
	_, err := h.svc.Import(context.Background(), "journal.txt", iotest.ErrReader(readErr))
	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)

	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeParsing, appErr.Type)
	assert.Equal(t, "journal.txt", appErr.Context["filename"])
	assert.Equal(t, 5, h.svc.Size())
	testutil.AssertLogAttr(t, h.logs, "component", "journal_service")
}

func TestJournalService_CRUD(t *testing.T) {
	h := newHarness(t, nil)
	importSample(t, h)
	ctx := context.Background()

	idx, err := h.svc.Create(ctx, roster.Input{
		FullName:   "Новикова Ольга",
		ClassLabel: "2А",
		Grades:     map[string]string{"Математика": "4", "Физика": ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, idx)

	rec, err := h.svc.Get(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, "4", rec.Grade("Математика").String())

	require.NoError(t, h.svc.Update(ctx, idx, roster.Input{
		FullName: "Новикова Ольга", ClassLabel: "2Б",
		Grades: map[string]string{"Математика": "5"},
	}))
	rec, err = h.svc.Get(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, "2Б", rec.ClassLabel)

	require.NoError(t, h.svc.Delete(ctx, 0))
	assert.Equal(t, 5, h.svc.Size())

	actions := []string{}
	for _, e := range h.notifier.Events() {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{ActionImport, ActionCreate, ActionUpdate, ActionDelete}, actions)

	names := []string{}
	for _, s := range h.spans.Ended() {
		names = append(names, s.Name())
	}
	assert.Subset(t, names, []string{"journal.import", "journal.create", "journal.update", "journal.delete"})
}

func TestJournalService_CreateRejectsOutOfRange(t *testing.T) {
	h := newHarness(t, nil)
	importSample(t, h)
	before := h.svc.List(context.Background())

	_, err := h.svc.Create(context.Background(), roster.Input{
		FullName:   "Смирнов",
		ClassLabel: "10А",
		Grades:     map[string]string{"Математика": "6"},
	})

	var verr *roster.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Математика", verr.Fields[0].Field)
	assert.Equal(t, before, h.svc.List(context.Background()))
	assert.Len(t, h.notifier.Events(), 1, "no event for rejected create")
	assert.Equal(t, int64(1), h.counter(t, "journal_validation_failures_total"))
}

func TestJournalService_IndexErrors(t *testing.T) {
	h := newHarness(t, nil)
	importSample(t, h)
	ctx := context.Background()

	_, err := h.svc.Get(ctx, 5)
	assert.ErrorIs(t, err, roster.ErrIndexOutOfRange)
	assert.ErrorIs(t, h.svc.Update(ctx, -1, roster.Input{FullName: "A", ClassLabel: "1А"}), roster.ErrIndexOutOfRange)
	assert.ErrorIs(t, h.svc.Delete(ctx, 5), roster.ErrIndexOutOfRange)

	require.NoError(t, h.svc.Delete(ctx, 4), "last index is deletable")
	assert.Equal(t, 4, h.svc.Size())
}

func TestJournalService_StorageFailure(t *testing.T) {
	slot := &failingSlot{Memory: storage.NewMemory(), err: errors.New("disk full")}
	h := newHarness(t, slot)

	_, err := h.svc.Import(context.Background(), "journal.csv",
		strings.NewReader(testutil.DelimitedText(testutil.SampleTable(), ",")))

	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeStorage, appErr.Type)
	assert.Zero(t, h.svc.Size(), "nothing installed when persistence fails")
	assert.Empty(t, h.notifier.Events())
	assert.Equal(t, int64(1), h.counter(t, "journal_operation_errors_total"))
}

func TestJournalService_StatisticsAndCharts(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.Statistics(ctx)
	assert.ErrorIs(t, err, ErrRosterEmpty)
	_, err = h.svc.Charts(ctx)
	assert.ErrorIs(t, err, ErrRosterEmpty)

	importSample(t, h)

	report, err := h.svc.Statistics(ctx)
	require.NoError(t, err)
	require.Len(t, report.PerSubject, 2)

	maths := report.PerSubject[0]
	assert.Equal(t, "Математика", maths.Subject)
	labels := []string{}
	for _, c := range maths.Classes {
		labels = append(labels, c.Label)
	}
	assert.Equal(t, []string{"2А", "10А", "10Б"}, labels)
	assert.Equal(t, 3.8, report.Overall[0].Mean)
	assert.Equal(t, 4.0, report.Overall[0].Median)

	series, err := h.svc.Charts(ctx)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, []string{"2А", "10А", "10Б"}, series[0].Classes)
	assert.Equal(t, []float64{4.5, 2, 4}, series[0].Means)
}

func TestJournalService_Preview(t *testing.T) {
	h := newHarness(t, nil)
	importSample(t, h)

	p := h.svc.Preview(context.Background(), 2)
	assert.Equal(t, 5, p.Total)
	assert.Len(t, p.Records, 2)

	p = h.svc.Preview(context.Background(), 50)
	assert.Len(t, p.Records, 5)
}

func TestJournalService_Export(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	var buf bytes.Buffer
	assert.ErrorIs(t, h.svc.Export(ctx, tabular.FormatCSV, &buf), ErrRosterEmpty)

	importSample(t, h)

	require.NoError(t, h.svc.Export(ctx, tabular.FormatText, &buf))
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "ФИО\tКласс\tМатематика\tФизика", lines[0])
	assert.Len(t, lines, 6)

	assert.ErrorIs(t, h.svc.Export(ctx, tabular.Format("pdf"), &buf), tabular.ErrUnsupportedFormat)

	dir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)
	path, err := h.svc.ExportFile(ctx, tabular.FormatWorkbook, exporter.NewFileWriter(dir, logger))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "journal.xlsx"))
	assert.Equal(t, int64(2), h.counter(t, "journal_exports_total"))
}

func TestJournalService_LoadRestoresPersistedRoster(t *testing.T) {
	slot := storage.NewMemory()
	first := newHarness(t, slot)
	importSample(t, first)

	second := newHarness(t, slot)
	assert.True(t, second.svc.Load(context.Background()))
	assert.Equal(t, first.svc.List(context.Background()), second.svc.List(context.Background()))
}
