package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(spec ProbeSpec, probe probeFunc) *ProbeRunner {
	r := NewProbeRunner(spec)
	r.retryDelay = time.Millisecond
	r.probe = probe
	return r
}

func TestProbeRunnerShortCircuit(t *testing.T) {
	attempts := 0
	r := newTestRunner(ProbeSpec{Target: "2001:db8::53", Count: 5, Timeout: time.Second},
		func(ctx context.Context, target, source string, timeout time.Duration) (bool, error) {
			attempts++
			return attempts == 2, nil
		})

	res := r.Run(context.Background())
	assert.Equal(t, Reachable, res.Verdict)
	assert.NoError(t, res.Err)
	assert.Equal(t, 2, attempts, "remaining attempts must be skipped after the first reply")
}

func TestProbeRunnerExhaustion(t *testing.T) {
	attempts := 0
	r := newTestRunner(ProbeSpec{Target: "2001:db8::53", Count: 5, Timeout: time.Second},
		func(ctx context.Context, target, source string, timeout time.Duration) (bool, error) {
			attempts++
			return false, nil
		})

	res := r.Run(context.Background())
	assert.Equal(t, Unreachable, res.Verdict)
	assert.NoError(t, res.Err)
	assert.Equal(t, 5, attempts)
}

func TestProbeRunnerLocalError(t *testing.T) {
	bindErr := errors.New("bind: cannot assign requested address")
	r := newTestRunner(ProbeSpec{Target: "2001:db8::53", Source: "2001:db8::1", Count: 3, Timeout: time.Second},
		func(ctx context.Context, target, source string, timeout time.Duration) (bool, error) {
			return false, bindErr
		})

	res := r.Run(context.Background())
	assert.Equal(t, Inconclusive, res.Verdict)
	assert.ErrorIs(t, res.Err, bindErr)
}

func TestProbeRunnerPassesSpecThrough(t *testing.T) {
	spec := ProbeSpec{Target: "2001:db8::53", Source: "2001:db8::1", Count: 1, Timeout: 250 * time.Millisecond}
	r := newTestRunner(spec,
		func(ctx context.Context, target, source string, timeout time.Duration) (bool, error) {
			assert.Equal(t, spec.Target, target)
			assert.Equal(t, spec.Source, source)
			assert.Equal(t, spec.Timeout, timeout)
			return true, nil
		})

	res := r.Run(context.Background())
	assert.Equal(t, Reachable, res.Verdict)
}

func TestProbeRunnerCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	r := newTestRunner(ProbeSpec{Target: "2001:db8::53", Count: 10, Timeout: time.Second},
		func(ctx context.Context, target, source string, timeout time.Duration) (bool, error) {
			attempts++
			cancel()
			return false, nil
		})
	r.retryDelay = time.Minute

	res := r.Run(ctx)
	assert.Equal(t, Inconclusive, res.Verdict)
	require.Error(t, res.Err)
	assert.Equal(t, 1, attempts)
}
