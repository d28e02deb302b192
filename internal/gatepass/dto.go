package gatepass

import (
	"errors"
	"time"

	"github.com/frahmantamala/yardguard/internal"
	"github.com/frahmantamala/yardguard/internal/core/common/validation"
)

// CreateGatePassDTO represents the request payload for issuing a gate pass
type CreateGatePassDTO struct {
	VehiclePlate string    `json:"vehicle_plate" validate:"required"`
	VehicleType  string    `json:"vehicle_type"`
	DriverName   string    `json:"driver_name" validate:"required"`
	AmountIDR    int64     `json:"amount_idr"`
	YardID       string    `json:"yard_id" validate:"required"`
	AssignedTo   string    `json:"assigned_to,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
}

// Validate validates the CreateGatePassDTO
func (dto CreateGatePassDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("vehicle_plate", dto.VehiclePlate).Required().MaxLength(16)
	validator.Field("driver_name", dto.DriverName).Required().MaxLength(120)
	validator.Field("yard_id", dto.YardID).Required()
	validator.Field("amount_idr", dto.AmountIDR).MinInt(0, internal.ErrCodeValidationFailed)
	validator.Field("notes", dto.Notes).MaxLength(500)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// UpdateGatePassDTO carries a partial update. Only the fields present in
// the JSON body are touched; the writable field mask is enforced against
// exactly that set.
type UpdateGatePassDTO struct {
	VehiclePlate *string `json:"vehicle_plate,omitempty"`
	VehicleType  *string `json:"vehicle_type,omitempty"`
	DriverName   *string `json:"driver_name,omitempty"`
	AmountIDR    *int64  `json:"amount_idr,omitempty"`
	AssignedTo   *string `json:"assigned_to,omitempty"`
	Flagged      *bool   `json:"flagged,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// TouchedFields lists the record fields this update would change, named
// the way capability field permissions name them.
func (dto UpdateGatePassDTO) TouchedFields() []string {
	var fields []string
	if dto.VehiclePlate != nil {
		fields = append(fields, "vehicle_plate")
	}
	if dto.VehicleType != nil {
		fields = append(fields, "vehicle_type")
	}
	if dto.DriverName != nil {
		fields = append(fields, "driver_name")
	}
	if dto.AmountIDR != nil {
		fields = append(fields, "amount_idr")
	}
	if dto.AssignedTo != nil {
		fields = append(fields, "assigned_to")
	}
	if dto.Flagged != nil {
		fields = append(fields, "flagged")
	}
	if dto.Notes != nil {
		fields = append(fields, "notes")
	}
	return fields
}

func (dto UpdateGatePassDTO) Validate() error {
	if len(dto.TouchedFields()) == 0 {
		return errors.New("no fields to update")
	}
	if dto.VehiclePlate != nil && *dto.VehiclePlate == "" {
		return errors.New("vehicle_plate cannot be empty")
	}
	if dto.DriverName != nil && *dto.DriverName == "" {
		return errors.New("driver_name cannot be empty")
	}
	if dto.AmountIDR != nil && *dto.AmountIDR < 0 {
		return errors.New("amount_idr cannot be negative")
	}
	return nil
}

// RejectGatePassDTO represents the request for rejecting a gate pass
type RejectGatePassDTO struct {
	Reason string `json:"reason" validate:"required"`
}

func (dto RejectGatePassDTO) Validate() error {
	if dto.Reason == "" {
		return errors.New("reason is required when rejecting a gate pass")
	}
	return nil
}
