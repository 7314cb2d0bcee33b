package server

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	stopCh  chan struct{}
	once    sync.Once
	startFn func() error
	order   *[]string
	name    string
	mu      *sync.Mutex
}

func newMockService() *mockService {
	return &mockService{stopCh: make(chan struct{})}
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	<-m.stopCh
	return nil
}

func (m *mockService) Stop() {
	m.once.Do(func() {
		if m.order != nil {
			m.mu.Lock()
			*m.order = append(*m.order, m.name)
			m.mu.Unlock()
		}
		m.stopped.Store(true)
		close(m.stopCh)
	})
}

func waitStarted(t *testing.T, svcs ...*mockService) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, s := range svcs {
			if !s.started.Load() {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond, "services did not start in time")
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func awaitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
		return nil
	}
}

func TestLifecycleStartsAndStopsServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	svc1 := newMockService()
	svc2 := newMockService()
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	waitStarted(t, svc1, svc2)

	cancel()
	assert.NoError(t, awaitRun(t, done))
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycleStopsInReverseOrder(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	var order []string
	var mu sync.Mutex
	var svcs []*mockService
	for _, name := range []string{"grpc", "metrics", "db"} {
		s := newMockService()
		s.name, s.order, s.mu = name, &order, &mu
		svcs = append(svcs, s)
		lc.Add(name, s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	waitStarted(t, svcs...)
	cancel()
	require.NoError(t, awaitRun(t, done))

	assert.Equal(t, []string{"db", "metrics", "grpc"}, order)
}

func TestLifecycleServiceFailureStopsOthers(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("listen: address in use")
	healthy := newMockService()
	failing := newMockService()
	failing.startFn = func() error { return boom }
	lc.Add("healthy", healthy)
	lc.Add("failing", failing)

	err := awaitRun(t, runAsync(lc, context.Background()))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service failing")
	assert.True(t, healthy.stopped.Load())
}

func TestLifecycleEarlyExitIsAnError(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	quitter := newMockService()
	quitter.startFn = func() error { return nil }
	lc.Add("quitter", quitter)

	err := awaitRun(t, runAsync(lc, context.Background()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited before shutdown")
}

func TestLifecycleSignalShutsDown(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.signals = []os.Signal{syscall.SIGUSR1}
	svc := newMockService()
	lc.Add("svc", svc)

	done := runAsync(lc, context.Background())
	waitStarted(t, svc)
	// NotifyContext is installed before services start; give Run a moment.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	assert.NoError(t, awaitRun(t, done))
	assert.True(t, svc.stopped.Load())
}

func TestLifecycleShutdownTimeout(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.SetShutdownTimeout(50 * time.Millisecond)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	stuck := &FuncService{
		StartFn: func() error { <-release; return nil },
		StopFn:  func() {},
	}
	lc.Add("stuck", stuck)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()

	err := awaitRun(t, done)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not stop within")
}

func TestSetShutdownTimeout_NonPositiveRestoresDefault(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.SetShutdownTimeout(time.Second)
	assert.Equal(t, time.Second, lc.shutdownTimeout)
	lc.SetShutdownTimeout(0)
	assert.Equal(t, DefaultShutdownTimeout, lc.shutdownTimeout)
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false
	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	assert.NoError(t, svc.Start())
	assert.True(t, started)
	svc.Stop()
	assert.True(t, stopped)
}
