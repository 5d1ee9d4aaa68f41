package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/logger"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/metrics"
)

type fakeLock struct {
	acquired bool
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.acquired = false
	f.releases++
	return nil
}

type testJob struct {
	name  string
	err   error
	panic bool
	runs  int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	if t.panic {
		panic("kaboom")
	}
	return t.err
}

func newTestService(t *testing.T, lock Lock, m *metrics.CronJobMetrics, jobs ...Job) *Service {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	service, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		Registry: registry,
		Lock:     lock,
		Metrics:  m,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return service
}

func TestServiceRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	success := &testJob{name: "success"}
	failure := &testJob{name: "fail", err: errors.New("boom")}
	panicky := &testJob{name: "panicky", panic: true}
	lock := &fakeLock{}
	reg := prometheus.NewRegistry()
	service := newTestService(t, lock, metrics.NewCronJobMetrics(reg), success, failure, panicky)

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	for _, job := range []*testJob{success, failure, panicky} {
		if job.runs != 1 {
			t.Fatalf("expected %s to run once, ran %d", job.name, job.runs)
		}
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock released once, got %d", lock.releases)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got := counterValue(mfs, "abc_cron_job_success_total", "success"); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	for _, name := range []string{"fail", "panicky"} {
		if got := counterValue(mfs, "abc_cron_job_failure_total", name); got != 1 {
			t.Fatalf("expected 1 failure for %s, got %v", name, got)
		}
	}
}

func TestServiceSkipsCycleWhenLockHeld(t *testing.T) {
	job := &testJob{name: "sweep"}
	lock := &fakeLock{acquired: true}
	service := newTestService(t, lock, nil, job)

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job must not run without the lock")
	}
	if lock.releases != 0 {
		t.Fatalf("lock must not be released when not acquired")
	}
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "sweep"}
	service := newTestService(t, &fakeLock{}, nil, job)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	if _, err := NewService(ServiceParams{Lock: &fakeLock{}}); err == nil {
		t.Fatalf("expected logger error")
	}
	if _, err := NewService(ServiceParams{Logger: logger.New(logger.Options{Output: io.Discard})}); err == nil {
		t.Fatalf("expected lock error")
	}
}

func counterValue(mfs []*dto.MetricFamily, name, job string) float64 {
	for _, family := range mfs {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "job" && label.GetValue() == job {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
