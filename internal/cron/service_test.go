package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/doctorauto/patio-sync/pkg/logger"
)

type stubJob struct {
	name string
	runs int
	err  error
}

func (j *stubJob) Name() string { return j.name }

func (j *stubJob) Run(context.Context) error {
	j.runs++
	return j.err
}

type stubLock struct {
	acquired bool
	err      error
	releases int
}

func (l *stubLock) Acquire(context.Context) (bool, error) { return l.acquired, l.err }

func (l *stubLock) Release(context.Context) error {
	l.releases++
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})
}

func TestNewServiceRequiresLock(t *testing.T) {
	_, err := NewService(ServiceParams{Logger: testLogger()})
	require.Error(t, err)
}

func TestRunExecutesJobsOnceUpFront(t *testing.T) {
	job := &stubJob{name: "board-sync"}
	lock := &stubLock{acquired: true}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
		Interval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = svc.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 1, job.runs)
	require.Equal(t, 1, lock.releases)
}

func TestRunSkipsCycleWhenLockHeldElsewhere(t *testing.T) {
	job := &stubJob{name: "board-sync"}
	lock := &stubLock{acquired: false}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
		Interval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_ = svc.Run(ctx)
	require.Zero(t, job.runs)
	require.Zero(t, lock.releases)
}

func TestRunContinuesAfterJobFailure(t *testing.T) {
	failing := &stubJob{name: "first", err: errors.New("boom")}
	second := &stubJob{name: "second"}
	lock := &stubLock{acquired: true}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(failing, second),
		Lock:     lock,
		Interval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_ = svc.Run(ctx)
	require.Equal(t, 1, failing.runs)
	require.Equal(t, 1, second.runs)
}

func TestRegistryIgnoresNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &stubJob{name: "only"})
	registry.Register(nil)
	require.Len(t, registry.Jobs(), 1)
}
