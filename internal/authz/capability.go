package authz

import (
	"fmt"
	"net"
	"time"
)

// Module is the business area a capability applies to. The set is
// table-driven: registering a new module is a data change, not a new type.
type Module string

const (
	ModuleGatePass       Module = "gate_pass"
	ModuleInspection     Module = "inspection"
	ModuleExpense        Module = "expense"
	ModuleUserManagement Module = "user_management"
	ModuleReports        Module = "reports"
	ModuleStockyard      Module = "stockyard"
)

var knownModules = map[string]Module{
	"gate_pass":       ModuleGatePass,
	"inspection":      ModuleInspection,
	"expense":         ModuleExpense,
	"user_management": ModuleUserManagement,
	"reports":         ModuleReports,
	"stockyard":       ModuleStockyard,
}

func ParseModule(s string) (Module, error) {
	if m, ok := knownModules[s]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown module %q", s)
}

type Action string

const (
	ActionCreate   Action = "create"
	ActionRead     Action = "read"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionApprove  Action = "approve"
	ActionValidate Action = "validate"
	ActionReview   Action = "review"
	ActionReassign Action = "reassign"
	ActionExport   Action = "export"
)

var knownActions = map[string]Action{
	"create":   ActionCreate,
	"read":     ActionRead,
	"update":   ActionUpdate,
	"delete":   ActionDelete,
	"approve":  ActionApprove,
	"validate": ActionValidate,
	"review":   ActionReview,
	"reassign": ActionReassign,
	"export":   ActionExport,
}

func ParseAction(s string) (Action, error) {
	if a, ok := knownActions[s]; ok {
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Scope narrows which records a capability applies to. An empty scope is
// equivalent to ScopeAll.
type Scope string

const (
	ScopeAll            Scope = "all"
	ScopeOwnOnly        Scope = "own_only"
	ScopeYardOnly       Scope = "yard_only"
	ScopeDepartmentOnly Scope = "department_only"
	ScopeAssignedOnly   Scope = "assigned_only"
	ScopeCustom         Scope = "custom"
)

var knownScopes = map[string]Scope{
	"all":             ScopeAll,
	"own_only":        ScopeOwnOnly,
	"yard_only":       ScopeYardOnly,
	"department_only": ScopeDepartmentOnly,
	"assigned_only":   ScopeAssignedOnly,
	"custom":          ScopeCustom,
}

func ParseScope(s string) (Scope, error) {
	if sc, ok := knownScopes[s]; ok {
		return sc, nil
	}
	return "", fmt.Errorf("unknown scope %q", s)
}

type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpGreaterThan  Operator = ">"
	OpLessThan     Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpIn           Operator = "in"
	OpNotIn        Operator = "not_in"
	OpContains     Operator = "contains"
	OpStartsWith   Operator = "starts_with"
)

var knownOperators = map[string]Operator{
	"==":          OpEqual,
	"!=":          OpNotEqual,
	">":           OpGreaterThan,
	"<":           OpLessThan,
	">=":          OpGreaterEqual,
	"<=":          OpLessEqual,
	"in":          OpIn,
	"not_in":      OpNotIn,
	"contains":    OpContains,
	"starts_with": OpStartsWith,
}

func ParseOperator(s string) (Operator, error) {
	if op, ok := knownOperators[s]; ok {
		return op, nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

type Combinator string

const (
	CombineAnd Combinator = "AND"
	CombineOr  Combinator = "OR"
)

// Condition compares a dotted-path record field against a literal value.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

type ConditionGroup struct {
	CombineWith  Combinator  `json:"combine_with"`
	Conditions   []Condition `json:"conditions"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// TimeOfDayWindow bounds wall-clock time as "HH:MM". End before Start means
// the window wraps midnight.
type TimeOfDayWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type TimeRestrictions struct {
	ValidFrom  *time.Time       `json:"valid_from,omitempty"`
	ValidUntil *time.Time       `json:"valid_until,omitempty"`
	DaysOfWeek []time.Weekday   `json:"days_of_week,omitempty"`
	TimeOfDay  *TimeOfDayWindow `json:"time_of_day,omitempty"`
}

type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceDesktop DeviceType = "desktop"
	DeviceTablet  DeviceType = "tablet"
)

var knownDeviceTypes = map[string]DeviceType{
	"mobile":  DeviceMobile,
	"desktop": DeviceDesktop,
	"tablet":  DeviceTablet,
}

func ParseDeviceType(s string) (DeviceType, error) {
	if d, ok := knownDeviceTypes[s]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unknown device type %q", s)
}

type ContextRestrictions struct {
	RequireMFA       bool         `json:"require_mfa,omitempty"`
	RequireApproval  bool         `json:"require_approval,omitempty"`
	ApprovalFromRole []string     `json:"approval_from_role,omitempty"`
	RequireReason    bool         `json:"require_reason,omitempty"`
	IPWhitelist      []string     `json:"ip_whitelist,omitempty"`
	DeviceTypes      []DeviceType `json:"device_types,omitempty"`
}

type FieldPermissionMode string

const (
	FieldModeWhitelist FieldPermissionMode = "whitelist"
	FieldModeBlacklist FieldPermissionMode = "blacklist"
)

// FieldPermission masks fields for a single (module, action) pair. Only read
// and update actions carry field rules.
type FieldPermission struct {
	Module Module              `json:"module"`
	Action Action              `json:"action"`
	Mode   FieldPermissionMode `json:"mode"`
	Fields []string            `json:"fields"`
}

// Capability is a single authorization grant. Absent restrictions mean the
// grant is unconditional for its (module, action) pair.
type Capability struct {
	Module              Module               `json:"module"`
	Action              Action               `json:"action"`
	Scope               Scope                `json:"scope,omitempty"`
	CustomFilter        *ConditionGroup      `json:"custom_filter,omitempty"`
	TimeRestrictions    *TimeRestrictions    `json:"time_restrictions,omitempty"`
	Conditions          *ConditionGroup      `json:"conditions,omitempty"`
	ContextRestrictions *ContextRestrictions `json:"context_restrictions,omitempty"`
	FieldPermissions    []FieldPermission    `json:"field_permissions,omitempty"`
	Reason              string               `json:"reason,omitempty"`
	ExpiresAt           *time.Time           `json:"expires_at,omitempty"`
}

// Subject is the identity view the scope filter cross-references. The engine
// never reads ambient state; callers pass the subject explicitly.
type Subject struct {
	ID         string
	Role       string
	Department string
	YardID     string
}

// AccessContext carries the per-request trust signals the context gate
// checks. Now must be captured once by the caller so every gate in one
// evaluation sees the same instant.
type AccessContext struct {
	Now              time.Time
	MFASatisfied     bool
	ApprovalObtained bool
	ApproverRole     string
	ReasonProvided   string
	ClientIP         string
	DeviceType       DeviceType
}

// Validate checks a capability for authoring-time configuration errors. The
// evaluator itself fails closed on malformed grants; this surfaces the
// problem to the editor before the grant is persisted.
func (c *Capability) Validate() error {
	if _, err := ParseModule(string(c.Module)); err != nil {
		return err
	}
	if _, err := ParseAction(string(c.Action)); err != nil {
		return err
	}
	if c.Scope != "" {
		if _, err := ParseScope(string(c.Scope)); err != nil {
			return err
		}
	}
	if c.Scope == ScopeCustom {
		if c.CustomFilter == nil || len(c.CustomFilter.Conditions) == 0 {
			return fmt.Errorf("custom scope requires a non-empty custom_filter")
		}
	}
	if c.CustomFilter != nil {
		if err := c.CustomFilter.validate(); err != nil {
			return fmt.Errorf("custom_filter: %w", err)
		}
	}
	if c.Conditions != nil {
		if err := c.Conditions.validate(); err != nil {
			return fmt.Errorf("conditions: %w", err)
		}
	}
	if tr := c.TimeRestrictions; tr != nil {
		for _, d := range tr.DaysOfWeek {
			if d < time.Sunday || d > time.Saturday {
				return fmt.Errorf("day_of_week %d out of range", d)
			}
		}
		if tod := tr.TimeOfDay; tod != nil {
			if _, err := parseClock(tod.Start); err != nil {
				return fmt.Errorf("time_of_day start: %w", err)
			}
			if _, err := parseClock(tod.End); err != nil {
				return fmt.Errorf("time_of_day end: %w", err)
			}
		}
		if tr.ValidFrom != nil && tr.ValidUntil != nil && tr.ValidUntil.Before(*tr.ValidFrom) {
			return fmt.Errorf("valid_until precedes valid_from")
		}
	}
	if cr := c.ContextRestrictions; cr != nil {
		for _, entry := range cr.IPWhitelist {
			if _, _, err := net.ParseCIDR(entry); err == nil {
				continue
			}
			if net.ParseIP(entry) == nil {
				return fmt.Errorf("ip_whitelist entry %q is neither an IP nor a CIDR", entry)
			}
		}
		for _, d := range cr.DeviceTypes {
			if _, err := ParseDeviceType(string(d)); err != nil {
				return err
			}
		}
	}
	for _, fp := range c.FieldPermissions {
		if _, err := ParseModule(string(fp.Module)); err != nil {
			return fmt.Errorf("field_permissions: %w", err)
		}
		if fp.Action != ActionRead && fp.Action != ActionUpdate {
			return fmt.Errorf("field_permissions: action %q must be read or update", fp.Action)
		}
		if fp.Mode != FieldModeWhitelist && fp.Mode != FieldModeBlacklist {
			return fmt.Errorf("field_permissions: unknown mode %q", fp.Mode)
		}
		if len(fp.Fields) == 0 {
			return fmt.Errorf("field_permissions: empty field list")
		}
	}
	return nil
}

func (g *ConditionGroup) validate() error {
	if g.CombineWith != CombineAnd && g.CombineWith != CombineOr {
		return fmt.Errorf("unknown combinator %q", g.CombineWith)
	}
	for _, cond := range g.Conditions {
		if cond.Field == "" {
			return fmt.Errorf("condition with empty field")
		}
		if _, err := ParseOperator(string(cond.Operator)); err != nil {
			return err
		}
	}
	return nil
}
