package gatepass

import "time"

type GatePass struct {
	ID           int64      `gorm:"primaryKey"`
	PassNumber   string     `gorm:"column:pass_number;uniqueIndex;not null"`
	VehiclePlate string     `gorm:"column:vehicle_plate;not null"`
	VehicleType  string     `gorm:"column:vehicle_type"`
	DriverName   string     `gorm:"column:driver_name"`
	Status       string     `gorm:"column:status;default:pending"`
	AmountIDR    int64      `gorm:"column:amount_idr"`
	YardID       string     `gorm:"column:yard_id;index"`
	Department   string     `gorm:"column:department"`
	CreatedBy    string     `gorm:"column:created_by;not null"`
	AssignedTo   string     `gorm:"column:assigned_to"`
	Flagged      bool       `gorm:"column:flagged;default:false"`
	Notes        string     `gorm:"column:notes"`
	IssuedAt     time.Time  `gorm:"column:issued_at"`
	ProcessedAt  *time.Time `gorm:"column:processed_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (GatePass) TableName() string {
	return "gate_passes"
}
