package capability

import (
	"time"

	"github.com/frahmantamala/yardguard/internal/authz"
)

// CreateGrantDTO is the transport shape the authoring UI submits. The
// restriction blocks reuse the engine's own JSON shapes so the editor and
// the evaluator can never drift apart.
type CreateGrantDTO struct {
	UserID              int64                      `json:"user_id"`
	Module              string                     `json:"module"`
	Action              string                     `json:"action"`
	Scope               string                     `json:"scope,omitempty"`
	CustomFilter        *authz.ConditionGroup      `json:"custom_filter,omitempty"`
	TimeRestrictions    *authz.TimeRestrictions    `json:"time_restrictions,omitempty"`
	Conditions          *authz.ConditionGroup      `json:"conditions,omitempty"`
	ContextRestrictions *authz.ContextRestrictions `json:"context_restrictions,omitempty"`
	FieldPermissions    []authz.FieldPermission    `json:"field_permissions,omitempty"`
	Reason              string                     `json:"reason,omitempty"`
	ExpiresAt           *time.Time                 `json:"expires_at,omitempty"`
}

type UpdateGrantDTO struct {
	Scope               *string                    `json:"scope,omitempty"`
	CustomFilter        *authz.ConditionGroup      `json:"custom_filter,omitempty"`
	TimeRestrictions    *authz.TimeRestrictions    `json:"time_restrictions,omitempty"`
	Conditions          *authz.ConditionGroup      `json:"conditions,omitempty"`
	ContextRestrictions *authz.ContextRestrictions `json:"context_restrictions,omitempty"`
	FieldPermissions    []authz.FieldPermission    `json:"field_permissions,omitempty"`
	Reason              *string                    `json:"reason,omitempty"`
	ExpiresAt           *time.Time                 `json:"expires_at,omitempty"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreateGrantDTO) Validate() error {
	if d.UserID == 0 {
		return ValidationError{Msg: "user_id is required"}
	}
	if d.Module == "" {
		return ValidationError{Msg: "module is required"}
	}
	if d.Action == "" {
		return ValidationError{Msg: "action is required"}
	}
	return nil
}

func (d CreateGrantDTO) toCapability() authz.Capability {
	return authz.Capability{
		Module:              authz.Module(d.Module),
		Action:              authz.Action(d.Action),
		Scope:               authz.Scope(d.Scope),
		CustomFilter:        d.CustomFilter,
		TimeRestrictions:    d.TimeRestrictions,
		Conditions:          d.Conditions,
		ContextRestrictions: d.ContextRestrictions,
		FieldPermissions:    d.FieldPermissions,
		Reason:              d.Reason,
		ExpiresAt:           d.ExpiresAt,
	}
}
