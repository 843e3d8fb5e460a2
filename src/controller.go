package main

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type FailoverState int

const (
	Direct FailoverState = iota
	NatFallback
)

func (s FailoverState) String() string {
	if s == NatFallback {
		return "nat-fallback"
	}
	return "direct"
}

// Controller owns the detection loop: probe both paths concurrently,
// decide the desired state, reconcile the firewall rule and the
// incident. The in-memory state is only used to damp logging and feed
// metrics; reconciliation itself always re-checks the rule table, so a
// restart converges on the first cycle.
type Controller struct {
	defaultProbe *ProbeRunner
	policyProbe  *ProbeRunner
	rule         NatRule
	rules        *RuleManager
	notifier     *Notifier
	interval     time.Duration
	state        FailoverState
}

func NewController(cfg ConfigType, rules *RuleManager, notifier *Notifier) *Controller {
	return &Controller{
		defaultProbe: NewProbeRunner(ProbeSpec{
			Target:  cfg.To.String(),
			Count:   cfg.Retries,
			Timeout: cfg.Timeout,
		}),
		policyProbe: NewProbeRunner(ProbeSpec{
			Target:  cfg.To.String(),
			Source:  cfg.From.String(),
			Count:   cfg.Retries,
			Timeout: cfg.Timeout,
		}),
		rule:     NatRule{Iface: cfg.Iface, Exclude: cfg.From.String()},
		rules:    rules,
		notifier: notifier,
		interval: cfg.Interval,
	}
}

// RunLoop blocks until ctx is cancelled.
func (c *Controller) RunLoop(ctx context.Context) {
	for {
		c.runCycle(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}

func (c *Controller) runCycle(ctx context.Context) {
	defCh := make(chan ProbeResult, 1)
	polCh := make(chan ProbeResult, 1)
	go func() { defCh <- c.defaultProbe.Run(ctx) }()
	go func() { polCh <- c.policyProbe.Run(ctx) }()
	defRes := <-defCh
	polRes := <-polCh

	coll.observeProbes(defRes.Verdict == Reachable, polRes.Verdict == Reachable)
	coll.cycleDone()

	if defRes.Verdict != Reachable {
		log.Infof("Ping from the default address failed after %d attempts (%s). "+
			"Not taking action as the WAN seems to be under problems.",
			c.defaultProbe.spec.Count, verdictDetail(defRes))
		return
	}
	log.Debugf("Ping from the default address succeeded, trying from %s...", c.policyProbe.spec.Source)

	desired := Direct
	if polRes.Verdict != Reachable {
		desired = NatFallback
		msg := fmt.Sprintf("Ping from %s failed after %d attempts (%s). Ensuring the NAT masquerade rule.",
			c.policyProbe.spec.Source, c.policyProbe.spec.Count, verdictDetail(polRes))
		// Only logged at info on the edge, to not flood the logs at
		// every cycle while the fallback stays active.
		if c.state != NatFallback {
			log.Info(msg)
		} else {
			log.Debug(msg)
		}
	} else {
		log.Debugf("Ping from %s succeeded.", c.policyProbe.spec.Source)
		if c.state != Direct {
			log.Infof("Routing of %s recovered. Removing the NAT masquerade rule.", c.rule.Exclude)
		}
	}

	var err error
	if desired == NatFallback {
		err = c.rules.EnsurePresent(c.rule)
	} else {
		err = c.rules.EnsureAbsent(c.rule)
	}
	if err != nil {
		// State is left untouched so the next cycle retries the same
		// transition.
		log.Errorf("Error reconciling the NAT rule: %v", err)
		coll.reconcileError()
		return
	}

	c.state = desired
	c.notifier.SetOpen(desired == NatFallback)
	coll.observeState(c.state, c.notifier.open)
}

func verdictDetail(res ProbeResult) string {
	if res.Err != nil {
		return fmt.Sprintf("%s: %v", res.Verdict, res.Err)
	}
	return res.Verdict.String()
}
