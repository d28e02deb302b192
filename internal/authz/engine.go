// Package authz implements the capability authorization engine: a layered
// policy evaluation over record scoping, temporal windows, structured
// conditions, contextual trust requirements and field-level masking.
//
// The engine is a pure function of its inputs. It performs no I/O, reads no
// ambient state, and may be called concurrently from any number of request
// handlers; all inputs are caller-owned snapshots for the duration of one
// call. The caller captures the evaluation instant once in
// AccessContext.Now so every gate sees the same moment in time.
package authz

import (
	"errors"
	"fmt"
)

// ErrNoCapabilitySet is returned when the capability list itself is absent.
// That indicates a broken integration with the identity provider, not a
// policy outcome, so it escalates instead of degrading to a deny.
var ErrNoCapabilitySet = errors.New("authz: capability set is nil")

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate decides ALLOW or DENY for (module, action) against the subject's
// capability set, and computes the merged field mask from the capabilities
// that passed every gate. record may be nil for record-less checks such as
// create or list-level gating; scope filtering is skipped in that case.
//
// Capabilities are additive: one sufficient grant authorizes the action. On
// deny, the rejection carries the most specific reason observed, taken from
// the candidate that progressed furthest through the gates.
func (e *Engine) Evaluate(capabilities []Capability, module Module, action Action, subject Subject, ctx AccessContext, record RecordView) (Decision, error) {
	if capabilities == nil {
		return Decision{}, ErrNoCapabilitySet
	}

	var effective []Capability
	best := &Rejection{
		Gate:    GateMatch,
		Message: fmt.Sprintf("no grant for %s/%s", module, action),
	}

	for i := range capabilities {
		cand := &capabilities[i]
		if cand.Module != module || cand.Action != action {
			continue
		}
		if rej := e.runGates(cand, subject, ctx, record); rej != nil {
			if rej.Gate > best.Gate {
				best = rej
			}
			continue
		}
		effective = append(effective, *cand)
	}

	if len(effective) == 0 {
		return Decision{
			Allowed:   false,
			FieldMask: AllFields(),
			Rejection: best,
		}, nil
	}

	return Decision{
		Allowed:   true,
		FieldMask: ResolveFieldMask(effective, module, action),
	}, nil
}

// runGates pipes one structurally matching candidate through the gate
// sequence. Gate order is fixed: expiry and temporal checks are cheap and
// deterministic; scope runs before conditions because it may exclude the
// record without touching arbitrary fields; context trust checks run last.
// A nil return means the candidate is effective.
func (e *Engine) runGates(cand *Capability, subject Subject, ctx AccessContext, record RecordView) *Rejection {
	if cand.Expired(ctx.Now) {
		return &Rejection{Gate: GateExpiry, Message: "grant has expired"}
	}
	if !TemporallyValid(cand.TimeRestrictions, ctx.Now) {
		return &Rejection{Gate: GateTemporal, Message: "grant is not valid at this time"}
	}
	if !InScope(cand, subject, record) {
		return &Rejection{Gate: GateScope, Message: fmt.Sprintf("record is outside the grant's %s scope", scopeName(cand.Scope))}
	}
	if cand.Conditions != nil && record != nil {
		if !EvaluateGroup(*cand.Conditions, record) {
			msg := cand.Conditions.ErrorMessage
			if msg == "" {
				msg = "record does not satisfy the grant's conditions"
			}
			return &Rejection{Gate: GateCondition, Message: msg}
		}
	}
	if ok, rej := SatisfiesContext(cand.ContextRestrictions, ctx); !ok {
		return rej
	}
	return nil
}

func scopeName(s Scope) Scope {
	if s == "" {
		return ScopeAll
	}
	return s
}
