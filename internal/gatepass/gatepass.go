package gatepass

import (
	"strconv"
	"time"

	"github.com/frahmantamala/yardguard/internal/authz"
	gatepassDatamodel "github.com/frahmantamala/yardguard/internal/core/datamodel/gatepass"
)

// GatePass is a vehicle movement authorization through a yard gate. It is
// the record type every engine gate inspects: scope filters match its
// ownership fields, conditions read any of its attributes, and field masks
// trim what each caller may see or change.
type GatePass struct {
	ID           int64      `json:"id"`
	PassNumber   string     `json:"pass_number"`
	VehiclePlate string     `json:"vehicle_plate"`
	VehicleType  string     `json:"vehicle_type"`
	DriverName   string     `json:"driver_name"`
	Status       string     `json:"status"`
	AmountIDR    int64      `json:"amount_idr"`
	YardID       string     `json:"yard_id"`
	Department   string     `json:"department"`
	CreatedBy    string     `json:"created_by"`
	AssignedTo   string     `json:"assigned_to,omitempty"`
	Flagged      bool       `json:"flagged"`
	Notes        string     `json:"notes,omitempty"`
	IssuedAt     time.Time  `json:"issued_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

func (g *GatePass) CanBeApproved() bool {
	return g.Status == StatusPending
}

func (g *GatePass) CanBeRejected() bool {
	return g.Status == StatusPending
}

func (g *GatePass) Approve() {
	g.Status = StatusApproved
	now := time.Now()
	g.ProcessedAt = &now
	g.UpdatedAt = now
}

func (g *GatePass) Reject() {
	g.Status = StatusRejected
	now := time.Now()
	g.ProcessedAt = &now
	g.UpdatedAt = now
}

// ToRecordView projects the pass into the flat view the evaluator reads.
// Keys here are the field names capability authors use in scopes,
// conditions and field permissions.
func (g *GatePass) ToRecordView() authz.RecordView {
	return authz.RecordView{
		"id":            strconv.FormatInt(g.ID, 10),
		"pass_number":   g.PassNumber,
		"vehicle_plate": g.VehiclePlate,
		"vehicle_type":  g.VehicleType,
		"driver_name":   g.DriverName,
		"status":        g.Status,
		"amount_idr":    g.AmountIDR,
		"yard_id":       g.YardID,
		"department":    g.Department,
		"created_by":    g.CreatedBy,
		"assigned_to":   g.AssignedTo,
		"flagged":       g.Flagged,
		"notes":         g.Notes,
		"issued_at":     g.IssuedAt.Format(time.RFC3339),
	}
}

func ToDataModel(g *GatePass) *gatepassDatamodel.GatePass {
	return &gatepassDatamodel.GatePass{
		ID:           g.ID,
		PassNumber:   g.PassNumber,
		VehiclePlate: g.VehiclePlate,
		VehicleType:  g.VehicleType,
		DriverName:   g.DriverName,
		Status:       g.Status,
		AmountIDR:    g.AmountIDR,
		YardID:       g.YardID,
		Department:   g.Department,
		CreatedBy:    g.CreatedBy,
		AssignedTo:   g.AssignedTo,
		Flagged:      g.Flagged,
		Notes:        g.Notes,
		IssuedAt:     g.IssuedAt,
		ProcessedAt:  g.ProcessedAt,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

func FromDataModel(g *gatepassDatamodel.GatePass) *GatePass {
	return &GatePass{
		ID:           g.ID,
		PassNumber:   g.PassNumber,
		VehiclePlate: g.VehiclePlate,
		VehicleType:  g.VehicleType,
		DriverName:   g.DriverName,
		Status:       g.Status,
		AmountIDR:    g.AmountIDR,
		YardID:       g.YardID,
		Department:   g.Department,
		CreatedBy:    g.CreatedBy,
		AssignedTo:   g.AssignedTo,
		Flagged:      g.Flagged,
		Notes:        g.Notes,
		IssuedAt:     g.IssuedAt,
		ProcessedAt:  g.ProcessedAt,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*gatepassDatamodel.GatePass) []*GatePass {
	result := make([]*GatePass, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
