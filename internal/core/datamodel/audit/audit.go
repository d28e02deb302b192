package audit

import "time"

// AccessDecision is one persisted evaluation outcome. Rows are append-only.
type AccessDecision struct {
	ID              string    `gorm:"primaryKey;type:uuid"`
	UserID          string    `gorm:"column:user_id;index"`
	Module          string    `gorm:"column:module;not null"`
	Action          string    `gorm:"column:action;not null"`
	Allowed         bool      `gorm:"column:allowed"`
	RejectionGate   string    `gorm:"column:rejection_gate"`
	RejectionReason string    `gorm:"column:rejection_reason"`
	RecordID        string    `gorm:"column:record_id"`
	ClientIP        string    `gorm:"column:client_ip"`
	DeviceType      string    `gorm:"column:device_type"`
	DecidedAt       time.Time `gorm:"column:decided_at"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AccessDecision) TableName() string {
	return "access_decisions"
}
