package main

import (
	"fmt"
	"net"
	"strings"

	"github.com/coreos/go-iptables/iptables"
)

const natTable = "nat"
const natChain = "POSTROUTING"

// NatRule is the one MASQUERADE exception this daemon ever manages:
// masquerade everything leaving the WAN interface except the address
// block that is supposed to be routed.
type NatRule struct {
	Iface   string
	Exclude string
}

func (r NatRule) Spec() []string {
	return []string{"-o", r.Iface, "!", "-s", r.Exclude, "-j", "MASQUERADE"}
}

func (r NatRule) String() string {
	return strings.Join(r.Spec(), " ")
}

// firewallBackend is the subset of go-iptables used by RuleManager.
type firewallBackend interface {
	Exists(table, chain string, rulespec ...string) (bool, error)
	Insert(table, chain string, pos int, rulespec ...string) error
	Delete(table, chain string, rulespec ...string) error
}

type RuleManager struct {
	ipt firewallBackend
}

func NewRuleManager(from net.IP) (*RuleManager, error) {
	proto := iptables.ProtocolIPv4
	if from.To4() == nil {
		proto = iptables.ProtocolIPv6
	}
	ipt, err := iptables.NewWithProtocol(proto)
	if err != nil {
		return nil, err
	}
	return &RuleManager{ipt: ipt}, nil
}

// EnsurePresent inserts the rule at the top of nat/POSTROUTING unless it
// is already there.
func (m *RuleManager) EnsurePresent(rule NatRule) error {
	exists, err := m.ipt.Exists(natTable, natChain, rule.Spec()...)
	if err != nil {
		return fmt.Errorf("checking rule %q: %w", rule, err)
	}
	if exists {
		return nil
	}
	if err := m.ipt.Insert(natTable, natChain, 1, rule.Spec()...); err != nil {
		return fmt.Errorf("inserting rule %q: %w", rule, err)
	}
	return nil
}

// EnsureAbsent deletes the rule from nat/POSTROUTING if it is there.
func (m *RuleManager) EnsureAbsent(rule NatRule) error {
	exists, err := m.ipt.Exists(natTable, natChain, rule.Spec()...)
	if err != nil {
		return fmt.Errorf("checking rule %q: %w", rule, err)
	}
	if !exists {
		return nil
	}
	if err := m.ipt.Delete(natTable, natChain, rule.Spec()...); err != nil {
		return fmt.Errorf("deleting rule %q: %w", rule, err)
	}
	return nil
}
