package capability

import (
	"time"

	"gorm.io/datatypes"
)

// Capability is the persisted form of a grant. The structured restriction
// blocks are stored as JSON so the authoring UI can round-trip them without
// schema churn; the authz package owns their shapes.
type Capability struct {
	ID                  int64          `gorm:"primaryKey"`
	UserID              int64          `gorm:"column:user_id;not null;index"`
	Module              string         `gorm:"column:module;not null"`
	Action              string         `gorm:"column:action;not null"`
	Scope               string         `gorm:"column:scope"`
	CustomFilter        datatypes.JSON `gorm:"column:custom_filter"`
	TimeRestrictions    datatypes.JSON `gorm:"column:time_restrictions"`
	Conditions          datatypes.JSON `gorm:"column:conditions"`
	ContextRestrictions datatypes.JSON `gorm:"column:context_restrictions"`
	FieldPermissions    datatypes.JSON `gorm:"column:field_permissions"`
	Reason              string         `gorm:"column:reason"`
	ExpiresAt           *time.Time     `gorm:"column:expires_at"`
	GrantedBy           *int64         `gorm:"column:granted_by"`
	CreatedAt           time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Capability) TableName() string {
	return "capabilities"
}
