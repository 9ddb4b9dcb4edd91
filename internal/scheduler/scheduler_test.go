package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsJob(t *testing.T) {
	ran := make(chan struct{}, 4)
	s := NewScheduler("@every 1s", func(ctx context.Context) error {
		ran <- struct{}{}
		return errors.New("failures are logged, not fatal")
	})

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler("not a schedule", func(ctx context.Context) error { return nil })
	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	s := NewScheduler("@every 1s", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		<-release
		return nil
	})

	done := make(chan struct{})
	go func() {
		s.run(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
	s.run(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	close(release)
	<-done
}
