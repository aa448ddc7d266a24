package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/patrimonio-app/patrimonio/internal/jobs"
	_ "github.com/patrimonio-app/patrimonio/testing"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type(), Queue: QueueDefault}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

func TestEnqueueAssetCreated(t *testing.T) {
	enq := &fakeEnqueuer{}
	client := NewClientWith(enq)

	err := client.EnqueueAssetCreated(context.Background(), AssetCreatedPayload{AssetID: 7, Patrimonio: "PC-GAMER-01", CategoryID: 1, OwnerID: 1})
	require.NoError(t, err)
	require.Len(t, enq.tasks, 1)
	require.Equal(t, TaskAssetCreated, enq.tasks[0].Type())

	var payload AssetCreatedPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	require.Equal(t, "PC-GAMER-01", payload.Patrimonio)
}

func TestEnqueueAssetCreatedIgnoresDuplicateTaskID(t *testing.T) {
	client := NewClientWith(&fakeEnqueuer{err: asynq.ErrTaskIDConflict})
	require.NoError(t, client.EnqueueAssetCreated(context.Background(), AssetCreatedPayload{AssetID: 7}))

	client = NewClientWith(&fakeEnqueuer{err: errors.New("redis down")})
	require.Error(t, client.EnqueueAssetCreated(context.Background(), AssetCreatedPayload{AssetID: 7}))
}

func TestAssetCreatedJob(t *testing.T) {
	job := NewAssetCreatedJob(nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewAssetCreatedTask(AssetCreatedPayload{AssetID: 3, Patrimonio: "NOTE-01", CategoryID: 2, OwnerID: 1})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	err = job.Handle(context.Background(), asynq.NewTask(TaskAssetCreated, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskAssetCreated, []byte(`{}`)))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

type fakeCleaner struct {
	olderThan time.Duration
	deleted   int64
	err       error
}

func (f *fakeCleaner) Cleanup(_ context.Context, olderThan time.Duration) (int64, error) {
	f.olderThan = olderThan
	return f.deleted, f.err
}

func TestIdempotencyCleanupJob(t *testing.T) {
	cleaner := &fakeCleaner{deleted: 4}
	job := NewIdempotencyCleanupJob(cleaner, 72*time.Hour, nil, nil)

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskIdempotencyCleanup, nil)))
	require.Equal(t, 72*time.Hour, cleaner.olderThan)

	task, err := NewIdempotencyCleanupTask(time.Hour)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, time.Hour, cleaner.olderThan)

	cleaner.err = errors.New("db down")
	require.Error(t, job.Handle(context.Background(), task))
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

func TestJobsHealth(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		pending   int
	}{
		{name: "no inspector", inspector: nil, status: http.StatusOK},
		{name: "queue info", inspector: fakeInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3}}, status: http.StatusOK, pending: 3},
		{name: "empty queue", inspector: fakeInspector{err: asynq.ErrQueueNotFound}, status: http.StatusOK},
		{name: "redis down", inspector: fakeInspector{err: errors.New("dial tcp")}, status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHandler(tc.inspector, nil).MountRoutes(r)
			res := httptest.NewRecorder()
			r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tc.status, res.Code)
			if tc.status == http.StatusOK {
				var body queueHealth
				require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
				require.Equal(t, tc.pending, body.Pending)
			}
		})
	}
}

func TestMetricsServerExportsWorkerMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	job := NewAssetCreatedJob(nil, metrics)
	require.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskAssetCreated, []byte("{"))))

	srv := NewMetricsServer(":0", jobmetrics.Handler(registry))

	res := httptest.NewRecorder()
	srv.Handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, res.Code)
	require.True(t, strings.Contains(res.Body.String(), `patrimonio_jobs_failures_total{job="asset:created"} 1`), res.Body.String())

	res = httptest.NewRecorder()
	srv.Handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, res.Code)
}
