package main

import (
	"context"
	"time"

	ping "github.com/go-ping/ping"
)

// ProbeSpec describes one reachability check: who to ping, which local
// address to bind, and how many attempts before giving up.
type ProbeSpec struct {
	Target  string
	Source  string // empty means default routing, no bind
	Count   int
	Timeout time.Duration
}

type ProbeVerdict int

const (
	Reachable ProbeVerdict = iota
	Unreachable
	Inconclusive
)

func (v ProbeVerdict) String() string {
	switch v {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	default:
		return "inconclusive"
	}
}

type ProbeResult struct {
	Verdict ProbeVerdict
	Err     error
}

// probeFunc performs a single probe attempt. Returns true when a reply
// arrived, false on timeout, and an error on local socket/bind failures.
type probeFunc func(ctx context.Context, target, source string, timeout time.Duration) (bool, error)

const probeRetryDelay = 500 * time.Millisecond

type ProbeRunner struct {
	spec       ProbeSpec
	retryDelay time.Duration
	probe      probeFunc
}

func NewProbeRunner(spec ProbeSpec) *ProbeRunner {
	return &ProbeRunner{
		spec:       spec,
		retryDelay: probeRetryDelay,
		probe:      pingProbe,
	}
}

// Run reduces up to Count probe attempts to a single verdict. The first
// reply wins and the remaining attempts are skipped. Local errors count
// as failed attempts; if the last failure was local the exhausted
// sequence is Inconclusive rather than Unreachable.
func (r *ProbeRunner) Run(ctx context.Context) ProbeResult {
	var lastErr error
	for attempt := 0; attempt < r.spec.Count; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ProbeResult{Verdict: Inconclusive, Err: ctx.Err()}
			case <-time.After(r.retryDelay):
			}
		}
		ok, err := r.probe(ctx, r.spec.Target, r.spec.Source, r.spec.Timeout)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return ProbeResult{Verdict: Reachable}
		}
		lastErr = nil
	}
	if lastErr != nil {
		return ProbeResult{Verdict: Inconclusive, Err: lastErr}
	}
	return ProbeResult{Verdict: Unreachable}
}

// pingProbe is a package variable so tests can substitute deterministic
// outcomes.
var pingProbe probeFunc = func(ctx context.Context, target, source string, timeout time.Duration) (bool, error) {
	pinger, err := ping.NewPinger(target)
	if err != nil {
		return false, err
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.Source = source
	pinger.RecordRtts = false
	pinger.SetPrivileged(true)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pinger.Stop()
		case <-done:
		}
	}()

	if err := pinger.Run(); err != nil {
		return false, err
	}
	return pinger.Statistics().PacketsRecv > 0, nil
}
