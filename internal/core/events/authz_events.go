package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAccessDecision    = "access.decision"
	EventTypeCapabilityGranted = "capability.granted"
	EventTypeCapabilityRevoked = "capability.revoked"
)

// AccessDecisionEvent is emitted for every authorization evaluation on a
// protected operation, allowed or denied. The audit trail subscribes to it.
type AccessDecisionEvent struct {
	BaseEvent
	UserID          string `json:"user_id"`
	Module          string `json:"module"`
	Action          string `json:"action"`
	Allowed         bool   `json:"allowed"`
	RejectionGate   string `json:"rejection_gate,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	RecordID        string `json:"record_id,omitempty"`
	ClientIP        string `json:"client_ip,omitempty"`
	DeviceType      string `json:"device_type,omitempty"`
	DecidedAt       time.Time
}

func NewAccessDecisionEvent(userID, module, action string, allowed bool, rejectionGate, rejectionReason, recordID, clientIP, deviceType string, decidedAt time.Time) *AccessDecisionEvent {
	return &AccessDecisionEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAccessDecision,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":          userID,
				"module":           module,
				"action":           action,
				"allowed":          allowed,
				"rejection_gate":   rejectionGate,
				"rejection_reason": rejectionReason,
				"record_id":        recordID,
				"client_ip":        clientIP,
				"device_type":      deviceType,
				"decided_at":       decidedAt,
			},
		},
		UserID:          userID,
		Module:          module,
		Action:          action,
		Allowed:         allowed,
		RejectionGate:   rejectionGate,
		RejectionReason: rejectionReason,
		RecordID:        recordID,
		ClientIP:        clientIP,
		DeviceType:      deviceType,
		DecidedAt:       decidedAt,
	}
}

// CapabilityChangeEvent records grant lifecycle changes for the audit trail.
type CapabilityChangeEvent struct {
	BaseEvent
	GrantID   int64  `json:"grant_id"`
	UserID    int64  `json:"user_id"`
	Module    string `json:"module"`
	Action    string `json:"action"`
	ChangedBy int64  `json:"changed_by"`
}

func NewCapabilityChangeEvent(eventType string, grantID, userID int64, module, action string, changedBy int64) *CapabilityChangeEvent {
	return &CapabilityChangeEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"grant_id":   grantID,
				"user_id":    userID,
				"module":     module,
				"action":     action,
				"changed_by": changedBy,
			},
		},
		GrantID:   grantID,
		UserID:    userID,
		Module:    module,
		Action:    action,
		ChangedBy: changedBy,
	}
}
