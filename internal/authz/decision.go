package authz

// Gate identifies the evaluation stage a candidate capability was rejected
// at. Gates are ordered: the further a candidate got, the closer to passing
// it was, and the more specific its rejection reason is for diagnostics.
type Gate int

const (
	GateMatch Gate = iota
	GateExpiry
	GateTemporal
	GateScope
	GateCondition
	GateContext
)

func (g Gate) String() string {
	switch g {
	case GateMatch:
		return "match"
	case GateExpiry:
		return "expiry"
	case GateTemporal:
		return "temporal"
	case GateScope:
		return "scope"
	case GateCondition:
		return "condition"
	case GateContext:
		return "context"
	default:
		return "unknown"
	}
}

// Rejection is the structured reason a candidate (or the whole request) was
// denied, specific enough for the caller to surface an actionable message.
type Rejection struct {
	Gate    Gate   `json:"gate"`
	Message string `json:"message"`
}

func (r *Rejection) Error() string {
	if r == nil {
		return ""
	}
	return r.Message
}

// Decision is the outcome of one evaluation call. FieldMask is meaningful
// for read and update actions; other actions get an unrestricted mask.
type Decision struct {
	Allowed   bool       `json:"allowed"`
	FieldMask FieldMask  `json:"field_mask"`
	Rejection *Rejection `json:"rejection,omitempty"`
}
