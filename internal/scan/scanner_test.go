package scan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/feed"
)

type recordingBuilder struct {
	mu   sync.Mutex
	geos []string
	err  error
}

func (b *recordingBuilder) Build(ctx context.Context, geo string, topicCount, postsPerTopic int) (*feed.FeedResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.geos = append(b.geos, geo)
	if b.err != nil {
		return nil, b.err
	}
	return &feed.FeedResult{Geo: geo, Count: 1, Posts: []feed.Post{{ID: geo + "-1"}}}, nil
}

func (b *recordingBuilder) built() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.geos...)
}

type recordingRecorder struct {
	mu      sync.Mutex
	sources []string
}

func (r *recordingRecorder) SaveRun(ctx context.Context, source string, result *feed.FeedResult) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
	return int64(len(r.sources)), nil
}

type recordingStatus struct {
	mu        sync.Mutex
	healthy   int
	unhealthy int
}

func (s *recordingStatus) SetHealthy(component, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy++
}

func (s *recordingStatus) SetUnhealthy(component string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unhealthy++
}

func TestScanner_Run_InitialCycle(t *testing.T) {
	builder := &recordingBuilder{}
	recorder := &recordingRecorder{}
	status := &recordingStatus{}

	s := New(Config{
		Builder:  builder,
		Recorder: recorder,
		Status:   status,
		Geos:     []string{"US", "GB"},
		Interval: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	// The first cycle runs immediately, before any tick.
	require.Eventually(t, func() bool {
		return len(builder.built()) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.Equal(t, []string{"US", "GB"}, builder.built())
	assert.Equal(t, []string{"scan", "scan"}, recorder.sources)
	assert.Equal(t, 2, status.healthy)
	assert.Zero(t, status.unhealthy)
}

func TestScanner_Run_FailingRegionDoesNotStopOthers(t *testing.T) {
	builder := &recordingBuilder{err: assert.AnError}
	recorder := &recordingRecorder{}
	status := &recordingStatus{}

	s := New(Config{
		Builder:  builder,
		Recorder: recorder,
		Status:   status,
		Geos:     []string{"US", "GB"},
		Interval: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(builder.built()) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	assert.Empty(t, recorder.sources)
	assert.Equal(t, 2, status.unhealthy)
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{Builder: &recordingBuilder{}})

	assert.Equal(t, []string{"US"}, s.geos)
	assert.Equal(t, 30*time.Minute, s.interval)
	assert.Equal(t, 5, s.topicCount)
	assert.Equal(t, 10, s.perTopic)
}
