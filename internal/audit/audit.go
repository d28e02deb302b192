package audit

import (
	"time"

	auditDatamodel "github.com/frahmantamala/yardguard/internal/core/datamodel/audit"
)

// Decision is one recorded authorization outcome. The trail is append-only;
// decisions are written by the event subscriber and only ever read back for
// review.
type Decision struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Module          string    `json:"module"`
	Action          string    `json:"action"`
	Allowed         bool      `json:"allowed"`
	RejectionGate   string    `json:"rejection_gate,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	RecordID        string    `json:"record_id,omitempty"`
	ClientIP        string    `json:"client_ip,omitempty"`
	DeviceType      string    `json:"device_type,omitempty"`
	DecidedAt       time.Time `json:"decided_at"`
}

type RepositoryAPI interface {
	Create(decision *Decision) error
	ListByUser(userID string, limit, offset int) ([]*Decision, error)
	ListDenied(limit, offset int) ([]*Decision, error)
	DeleteBefore(cutoff time.Time) (int64, error)
}

func ToDataModel(d *Decision) *auditDatamodel.AccessDecision {
	return &auditDatamodel.AccessDecision{
		ID:              d.ID,
		UserID:          d.UserID,
		Module:          d.Module,
		Action:          d.Action,
		Allowed:         d.Allowed,
		RejectionGate:   d.RejectionGate,
		RejectionReason: d.RejectionReason,
		RecordID:        d.RecordID,
		ClientIP:        d.ClientIP,
		DeviceType:      d.DeviceType,
		DecidedAt:       d.DecidedAt,
	}
}

func FromDataModel(d *auditDatamodel.AccessDecision) *Decision {
	return &Decision{
		ID:              d.ID,
		UserID:          d.UserID,
		Module:          d.Module,
		Action:          d.Action,
		Allowed:         d.Allowed,
		RejectionGate:   d.RejectionGate,
		RejectionReason: d.RejectionReason,
		RecordID:        d.RecordID,
		ClientIP:        d.ClientIP,
		DeviceType:      d.DeviceType,
		DecidedAt:       d.DecidedAt,
	}
}

func FromDataModelSlice(rows []*auditDatamodel.AccessDecision) []*Decision {
	result := make([]*Decision, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
