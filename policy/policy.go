// Package policy holds the deployment switches that decide how strictly the
// obligation rules are enforced, plus optional CEL guard rules evaluated on
// top of the built-in permission table.

package policy

import (
	"context"
	"fmt"
	"strings"
)

// Conditioning closure modes.
const (
	ConditioningWarn    = "warn"    // open dependents are reported, closure proceeds (default)
	ConditioningEnforce = "enforce" // open dependents block the protocol attachment
)

// Routing approval guard modes.
const (
	RoutingGuardLegacy = "legacy" // nobody may comment at APROVACAO_TRAMITACAO (default)
	RoutingGuardStrict = "strict" // only administrators and system managers may
)

// Rule is a CEL guard bound to one action. When Expr does not evaluate to
// true the action is blocked with Reason.
type Rule struct {
	Action string `json:"action" yaml:"action"`
	Expr   string `json:"expr" yaml:"expr"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Config represents the declarative, serialisable part of a Policy.
type Config struct {
	Conditioning         string  `json:"conditioning,omitempty" yaml:"conditioning,omitempty" env:"CONDITIONING"`
	RoutingApprovalGuard string  `json:"routingApprovalGuard,omitempty" yaml:"routingApprovalGuard,omitempty" env:"ROUTING_APPROVAL_GUARD"`
	Rules                []*Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// DefaultConfig returns the observed behaviour.
func DefaultConfig() *Config {
	return &Config{Conditioning: ConditioningWarn, RoutingApprovalGuard: RoutingGuardLegacy}
}

// Validate checks modes and rule shape.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch strings.ToLower(c.Conditioning) {
	case "", ConditioningWarn, ConditioningEnforce:
	default:
		return fmt.Errorf("policy.conditioning: unsupported mode %q", c.Conditioning)
	}
	switch strings.ToLower(c.RoutingApprovalGuard) {
	case "", RoutingGuardLegacy, RoutingGuardStrict:
	default:
		return fmt.Errorf("policy.routingApprovalGuard: unsupported mode %q", c.RoutingApprovalGuard)
	}
	for i, rule := range c.Rules {
		if rule == nil || rule.Action == "" || strings.TrimSpace(rule.Expr) == "" {
			return fmt.Errorf("policy.rules[%d]: action and expr are required", i)
		}
	}
	return nil
}

// Policy is a compiled Config. A nil *Policy behaves like DefaultConfig.
type Policy struct {
	conditioning string
	routingGuard string
	rules        map[string][]*Rule
	evaluator    *celEvaluator
}

// New validates cfg and compiles its rules.
func New(cfg *Config) (*Policy, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ret := &Policy{
		conditioning: strings.ToLower(cfg.Conditioning),
		routingGuard: strings.ToLower(cfg.RoutingApprovalGuard),
		rules:        map[string][]*Rule{},
	}
	if len(cfg.Rules) == 0 {
		return ret, nil
	}
	evaluator, err := newCELEvaluator()
	if err != nil {
		return nil, err
	}
	ret.evaluator = evaluator
	for i, rule := range cfg.Rules {
		if err = evaluator.compile(rule.Expr); err != nil {
			return nil, fmt.Errorf("policy.rules[%d]: %w", i, err)
		}
		ret.rules[rule.Action] = append(ret.rules[rule.Action], rule)
	}
	return ret, nil
}

// EnforceConditioning reports whether open dependents block closure.
func (p *Policy) EnforceConditioning() bool {
	return p != nil && p.conditioning == ConditioningEnforce
}

// StrictRoutingGuard reports whether the corrected APROVACAO_TRAMITACAO guard applies.
func (p *Policy) StrictRoutingGuard() bool {
	return p != nil && p.routingGuard == RoutingGuardStrict
}

// HasRules reports whether any guard rule targets action.
func (p *Policy) HasRules(action string) bool {
	return p != nil && len(p.rules[action]) > 0
}

// Check evaluates every rule bound to action and returns the reasons of the
// ones that did not pass. Evaluation errors count as failures.
func (p *Policy) Check(action string, vars map[string]any) []string {
	if !p.HasRules(action) {
		return nil
	}
	var reasons []string
	for _, rule := range p.rules[action] {
		ok, err := p.evaluator.evaluate(rule.Expr, vars)
		if err == nil && ok {
			continue
		}
		reason := rule.Reason
		if reason == "" {
			reason = fmt.Sprintf("Blocked by policy rule: %s", rule.Expr)
		}
		reasons = append(reasons, reason)
	}
	return reasons
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
