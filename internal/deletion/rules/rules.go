// Package rules defines the sliding-window rate-limit rules that gate
// deletions, and how they are loaded and swapped at runtime.
package rules

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"deletionguard/internal/deletion/models"
	dErrors "deletionguard/pkg/domain-errors"
)

// Scope selects whose attempts a rule counts.
type Scope string

const (
	ScopeUser   Scope = "user"
	ScopeGlobal Scope = "global"
)

// Rule caps attempts within a sliding window. Rules are immutable once
// loaded; change them by swapping a whole RuleSet.
type Rule struct {
	Name              string
	Window            time.Duration
	MaxRequests       int
	CountOnlyFailures bool
	Scope             Scope
	AppliesTo         []models.RequestKind
	SkipValidation    bool
}

// Applies reports whether the rule is evaluated for kind. With no explicit
// AppliesTo the name decides: "bulk" rules only see bulk requests and
// "global" rules see every kind.
func (r Rule) Applies(kind models.RequestKind) bool {
	if kind == models.KindValidation && r.SkipValidation {
		return false
	}
	if len(r.AppliesTo) > 0 {
		return slices.Contains(r.AppliesTo, kind)
	}
	name := strings.ToLower(r.Name)
	isBulk := strings.Contains(name, "bulk")
	isGlobal := strings.Contains(name, "global")
	if kind == models.KindBulk {
		return isBulk || isGlobal
	}
	return !isBulk
}

func (r Rule) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("rule name is required")
	}
	if r.Window <= 0 {
		return fmt.Errorf("rule %q: window must be positive", r.Name)
	}
	if r.MaxRequests <= 0 {
		return fmt.Errorf("rule %q: max_requests must be positive", r.Name)
	}
	if r.Scope != ScopeUser && r.Scope != ScopeGlobal {
		return fmt.Errorf("rule %q: scope must be user or global", r.Name)
	}
	for _, k := range r.AppliesTo {
		if !k.IsValid() {
			return fmt.Errorf("rule %q: unknown request kind %q", r.Name, k)
		}
	}
	return nil
}

// RuleSet is an ordered list of rules. Order decides which rule reports a
// rejection when several are at their cap.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet validates rules and returns an immutable set.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	if len(rules) == 0 {
		return nil, dErrors.New(dErrors.CodeConfiguration, "at least one rate-limit rule is required")
	}
	seen := make(map[string]struct{}, len(rules))
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, err.Error())
		}
		if _, dup := seen[r.Name]; dup {
			return nil, dErrors.New(dErrors.CodeConfiguration, fmt.Sprintf("duplicate rule name %q", r.Name))
		}
		seen[r.Name] = struct{}{}
		r.AppliesTo = slices.Clone(r.AppliesTo)
		out = append(out, r)
	}
	return &RuleSet{rules: out}, nil
}

// Rules returns a copy of the rules in evaluation order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	for i, r := range rs.rules {
		r.AppliesTo = slices.Clone(r.AppliesTo)
		out[i] = r
	}
	return out
}

// For returns the rules evaluated for kind, in order.
func (rs *RuleSet) For(kind models.RequestKind) []Rule {
	var out []Rule
	for _, r := range rs.rules {
		if r.Applies(kind) {
			out = append(out, r)
		}
	}
	return out
}

func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// MaxWindow is the longest window in the set. The ledger must retain at
// least this much history.
func (rs *RuleSet) MaxWindow() time.Duration {
	var w time.Duration
	for _, r := range rs.rules {
		w = max(w, r.Window)
	}
	return w
}

// DefaultRules is the built-in rule table.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "user_per_minute", Window: time.Minute, MaxRequests: 10, Scope: ScopeUser},
		{Name: "user_per_hour", Window: time.Hour, MaxRequests: 100, Scope: ScopeUser},
		{Name: "user_failures_per_minute", Window: time.Minute, MaxRequests: 5, Scope: ScopeUser, CountOnlyFailures: true},
		{Name: "bulk_per_hour", Window: time.Hour, MaxRequests: 5, Scope: ScopeUser},
		{Name: "global_per_minute", Window: time.Minute, MaxRequests: 1000, Scope: ScopeGlobal, SkipValidation: true},
	}
}

// Default returns the built-in rule set.
func Default() *RuleSet {
	rs, err := NewRuleSet(DefaultRules())
	if err != nil {
		panic(err)
	}
	return rs
}
