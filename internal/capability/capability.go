package capability

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/frahmantamala/yardguard/internal/authz"
	capabilityDatamodel "github.com/frahmantamala/yardguard/internal/core/datamodel/capability"
	"gorm.io/datatypes"
)

// Grant is the domain view of a persisted capability: the engine-facing
// grant plus its grant bookkeeping.
type Grant struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	GrantedBy *int64           `json:"granted_by,omitempty"`
	Cap       authz.Capability `json:"capability"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type RepositoryAPI interface {
	GetByUserID(userID int64) ([]*Grant, error)
	GetByID(id int64) (*Grant, error)
	Create(grant *Grant) error
	Update(grant *Grant) error
	Delete(id int64) error
	DeleteExpiredBefore(cutoff time.Time) (int64, error)
}

type ServiceAPI interface {
	CapabilitiesForUser(userID int64) ([]authz.Capability, error)
	ListGrants(userID int64) ([]*Grant, error)
	CreateGrant(dto CreateGrantDTO, grantedBy int64) (*Grant, error)
	UpdateGrant(id int64, dto UpdateGrantDTO) (*Grant, error)
	RevokeGrant(id int64) error
}

// ToDataModel flattens a grant into its persisted row. Restriction blocks
// become JSON columns; nil blocks stay NULL.
func ToDataModel(g *Grant) (*capabilityDatamodel.Capability, error) {
	dm := &capabilityDatamodel.Capability{
		ID:        g.ID,
		UserID:    g.UserID,
		Module:    string(g.Cap.Module),
		Action:    string(g.Cap.Action),
		Scope:     string(g.Cap.Scope),
		Reason:    g.Cap.Reason,
		ExpiresAt: g.Cap.ExpiresAt,
		GrantedBy: g.GrantedBy,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}

	var err error
	if dm.CustomFilter, err = marshalBlock(g.Cap.CustomFilter); err != nil {
		return nil, fmt.Errorf("custom_filter: %w", err)
	}
	if dm.TimeRestrictions, err = marshalBlock(g.Cap.TimeRestrictions); err != nil {
		return nil, fmt.Errorf("time_restrictions: %w", err)
	}
	if dm.Conditions, err = marshalBlock(g.Cap.Conditions); err != nil {
		return nil, fmt.Errorf("conditions: %w", err)
	}
	if dm.ContextRestrictions, err = marshalBlock(g.Cap.ContextRestrictions); err != nil {
		return nil, fmt.Errorf("context_restrictions: %w", err)
	}
	if len(g.Cap.FieldPermissions) > 0 {
		raw, err := json.Marshal(g.Cap.FieldPermissions)
		if err != nil {
			return nil, fmt.Errorf("field_permissions: %w", err)
		}
		dm.FieldPermissions = raw
	}
	return dm, nil
}

// FromDataModel rebuilds the engine-facing capability from a row. A row
// whose JSON blocks fail to decode is reported as an error so the caller can
// fail closed instead of evaluating a half-parsed grant.
func FromDataModel(dm *capabilityDatamodel.Capability) (*Grant, error) {
	g := &Grant{
		ID:        dm.ID,
		UserID:    dm.UserID,
		GrantedBy: dm.GrantedBy,
		CreatedAt: dm.CreatedAt,
		UpdatedAt: dm.UpdatedAt,
		Cap: authz.Capability{
			Module:    authz.Module(dm.Module),
			Action:    authz.Action(dm.Action),
			Scope:     authz.Scope(dm.Scope),
			Reason:    dm.Reason,
			ExpiresAt: dm.ExpiresAt,
		},
	}

	if err := unmarshalBlock(dm.CustomFilter, &g.Cap.CustomFilter); err != nil {
		return nil, fmt.Errorf("custom_filter: %w", err)
	}
	if err := unmarshalBlock(dm.TimeRestrictions, &g.Cap.TimeRestrictions); err != nil {
		return nil, fmt.Errorf("time_restrictions: %w", err)
	}
	if err := unmarshalBlock(dm.Conditions, &g.Cap.Conditions); err != nil {
		return nil, fmt.Errorf("conditions: %w", err)
	}
	if err := unmarshalBlock(dm.ContextRestrictions, &g.Cap.ContextRestrictions); err != nil {
		return nil, fmt.Errorf("context_restrictions: %w", err)
	}
	if len(dm.FieldPermissions) > 0 {
		if err := json.Unmarshal(dm.FieldPermissions, &g.Cap.FieldPermissions); err != nil {
			return nil, fmt.Errorf("field_permissions: %w", err)
		}
	}
	return g, nil
}

func marshalBlock(block any) (datatypes.JSON, error) {
	if isNilPointer(block) {
		return nil, nil
	}
	raw, err := json.Marshal(block)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func unmarshalBlock[T any](raw datatypes.JSON, target **T) error {
	if len(raw) == 0 {
		return nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	*target = &value
	return nil
}

func isNilPointer(v any) bool {
	switch t := v.(type) {
	case *authz.ConditionGroup:
		return t == nil
	case *authz.TimeRestrictions:
		return t == nil
	case *authz.ContextRestrictions:
		return t == nil
	default:
		return v == nil
	}
}
