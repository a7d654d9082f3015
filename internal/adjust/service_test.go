package adjust_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/climate-adjust-service/internal/adjust"
	"github.com/couchcryptid/climate-adjust-service/internal/domain"
	"github.com/couchcryptid/climate-adjust-service/internal/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- mocks ---

type mockAdjuster struct {
	table   domain.Table
	err     error
	calls   int
	lastReq domain.AdjustmentRequest
	advance func()
	ctxErr  error
}

func (m *mockAdjuster) Adjust(ctx context.Context, req domain.AdjustmentRequest) (domain.Table, error) {
	m.calls++
	m.lastReq = req
	if m.advance != nil {
		m.advance()
	}
	if _, ok := ctx.Deadline(); ok {
		<-ctx.Done()
		m.ctxErr = ctx.Err()
		return domain.Table{}, ctx.Err()
	}
	return m.table, m.err
}

type mockPublisher struct {
	events []domain.AdjustmentEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event domain.AdjustmentEvent) error {
	m.events = append(m.events, event)
	return m.err
}

// --- helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{domain.InputFileName, domain.CountsFileName, domain.MetricsFileName, domain.GatesFileName} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	return dir
}

func tableWithRows(n int) domain.Table {
	t := domain.Table{Columns: []string{"event_id", "year", "loss"}}
	for i := 0; i < n; i++ {
		t.Rows = append(t.Rows, []any{json.Number("1"), json.Number("2"), float64(i)})
	}
	return t
}

func decodeRows(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	return rows
}

// --- tests ---

func TestService_Adjust_TruncatesToFiveRows(t *testing.T) {
	dir := writeDataDir(t)
	adj := &mockAdjuster{table: tableWithRows(12)}
	metrics := observability.NewMetricsForTesting()

	svc := adjust.New(dir, adj, discardLogger(), metrics)
	got, err := svc.Adjust(context.Background())
	require.NoError(t, err)

	want, err := tableWithRows(12).Head(5).MarshalJSON()
	require.NoError(t, err)
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, adj.calls)
	assert.Equal(t, domain.ResolveFilePaths(dir), adj.lastReq.Paths)
	assert.Equal(t, domain.DefaultParams(), adj.lastReq.Params)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AdjustRequests.WithLabelValues(domain.OutcomeSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.InFlight))
}

func TestService_Adjust_FewerThanFiveRows(t *testing.T) {
	svc := adjust.New(writeDataDir(t), &mockAdjuster{table: tableWithRows(2)}, discardLogger(), observability.NewMetricsForTesting())

	got, err := svc.Adjust(context.Background())
	require.NoError(t, err)
	assert.Len(t, decodeRows(t, got), 2)
}

func TestService_Adjust_MissingFileSkipsAdjuster(t *testing.T) {
	dir := writeDataDir(t)
	metricsPath := filepath.Join(dir, domain.MetricsFileName)
	require.NoError(t, os.Remove(metricsPath))

	adj := &mockAdjuster{table: tableWithRows(5)}
	metrics := observability.NewMetricsForTesting()
	svc := adjust.New(dir, adj, discardLogger(), metrics)

	_, err := svc.Adjust(context.Background())
	require.Error(t, err)

	var mfe *domain.MissingFileError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, metricsPath, mfe.Path)
	assert.Contains(t, err.Error(), metricsPath)
	assert.Zero(t, adj.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AdjustRequests.WithLabelValues(domain.OutcomeMissingFile)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MissingFiles.WithLabelValues("Metrics")))
}

func TestService_Adjust_ComputationError(t *testing.T) {
	adj := &mockAdjuster{err: errors.New("KeyError: 'mdr_sst'")}
	metrics := observability.NewMetricsForTesting()
	svc := adjust.New(writeDataDir(t), adj, discardLogger(), metrics)

	_, err := svc.Adjust(context.Background())
	require.Error(t, err)

	var ce *domain.ComputationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "KeyError: 'mdr_sst'", err.Error())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AdjustRequests.WithLabelValues(domain.OutcomeComputationError)))
}

func TestService_Adjust_SerializationErrorIsNotSuccess(t *testing.T) {
	for name, table := range map[string]domain.Table{
		"nested cell":       {Columns: []string{"a"}, Rows: [][]any{{[]any{json.Number("1")}}}},
		"duplicate columns": {Columns: []string{"loss", "loss"}, Rows: [][]any{{json.Number("1"), json.Number("2")}}},
	} {
		t.Run(name, func(t *testing.T) {
			pub := &mockPublisher{}
			metrics := observability.NewMetricsForTesting()
			svc := adjust.New(writeDataDir(t), &mockAdjuster{table: table}, discardLogger(), metrics, adjust.WithPublisher(pub))

			got, err := svc.Adjust(context.Background())
			require.Error(t, err)
			assert.Nil(t, got)

			var se *domain.SerializationError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AdjustRequests.WithLabelValues(domain.OutcomeSerializationError)))
			assert.Equal(t, 0.0, testutil.ToFloat64(metrics.AdjustRequests.WithLabelValues(domain.OutcomeSuccess)))

			require.Len(t, pub.events, 1)
			assert.Equal(t, domain.OutcomeSerializationError, pub.events[0].Outcome)
			assert.Equal(t, err.Error(), pub.events[0].Error)
			assert.Zero(t, pub.events[0].Rows)
		})
	}
}

func TestService_Adjust_Timeout(t *testing.T) {
	adj := &mockAdjuster{}
	svc := adjust.New(writeDataDir(t), adj, discardLogger(), observability.NewMetricsForTesting(),
		adjust.WithTimeout(20*time.Millisecond))

	_, err := svc.Adjust(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, adj.ctxErr, context.DeadlineExceeded)
}

func TestService_Adjust_PublishesEvent(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	domain.SetClock(fake)
	t.Cleanup(func() { domain.SetClock(nil) })

	adj := &mockAdjuster{
		table:   tableWithRows(7),
		advance: func() { fake.Advance(1500 * time.Millisecond) },
	}
	pub := &mockPublisher{}
	metrics := observability.NewMetricsForTesting()
	svc := adjust.New(writeDataDir(t), adj, discardLogger(), metrics, adjust.WithPublisher(pub))

	_, err := svc.Adjust(context.Background())
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), ev.RequestedAt)
	assert.Equal(t, int64(1500), ev.DurationMS)
	assert.Equal(t, domain.OutcomeSuccess, ev.Outcome)
	assert.Equal(t, 5, ev.Rows)
	assert.Equal(t, []string{"event_id", "year", "loss"}, ev.Columns)
	assert.Empty(t, ev.Error)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuditEvents.WithLabelValues("published")))
}

func TestService_Adjust_PublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker unavailable")}
	metrics := observability.NewMetricsForTesting()
	svc := adjust.New(writeDataDir(t), &mockAdjuster{table: tableWithRows(1)}, discardLogger(), metrics, adjust.WithPublisher(pub))

	got, err := svc.Adjust(context.Background())
	require.NoError(t, err)
	assert.Len(t, decodeRows(t, got), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuditEvents.WithLabelValues("error")))
}

func TestService_Adjust_FailureEventCarriesMessage(t *testing.T) {
	pub := &mockPublisher{}
	svc := adjust.New(t.TempDir(), &mockAdjuster{}, discardLogger(), observability.NewMetricsForTesting(), adjust.WithPublisher(pub))

	_, err := svc.Adjust(context.Background())
	require.Error(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, domain.OutcomeMissingFile, pub.events[0].Outcome)
	assert.Equal(t, err.Error(), pub.events[0].Error)
	assert.Zero(t, pub.events[0].Rows)
}

func TestService_Adjust_Idempotent(t *testing.T) {
	svc := adjust.New(writeDataDir(t), &mockAdjuster{table: tableWithRows(9)}, discardLogger(), observability.NewMetricsForTesting())

	first, err := svc.Adjust(context.Background())
	require.NoError(t, err)
	second, err := svc.Adjust(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestService_CheckReadiness(t *testing.T) {
	dir := writeDataDir(t)
	svc := adjust.New(dir, &mockAdjuster{}, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, svc.CheckReadiness(context.Background()))

	require.NoError(t, os.Remove(filepath.Join(dir, domain.GatesFileName)))
	err := svc.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.GatesFileName)
}
