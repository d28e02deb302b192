package postgres

import (
	"time"

	"github.com/frahmantamala/yardguard/internal/capability"
	capabilityDatamodel "github.com/frahmantamala/yardguard/internal/core/datamodel/capability"
	"gorm.io/gorm"
)

type CapabilityRepository struct {
	db *gorm.DB
}

func NewCapabilityRepository(db *gorm.DB) capability.RepositoryAPI {
	return &CapabilityRepository{db: db}
}

func (r *CapabilityRepository) GetByUserID(userID int64) ([]*capability.Grant, error) {
	var rows []*capabilityDatamodel.Capability
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	grants := make([]*capability.Grant, 0, len(rows))
	for _, row := range rows {
		grant, err := capability.FromDataModel(row)
		if err != nil {
			return nil, err
		}
		grants = append(grants, grant)
	}
	return grants, nil
}

func (r *CapabilityRepository) GetByID(id int64) (*capability.Grant, error) {
	var row capabilityDatamodel.Capability
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, err
	}
	return capability.FromDataModel(&row)
}

func (r *CapabilityRepository) Create(grant *capability.Grant) error {
	row, err := capability.ToDataModel(grant)
	if err != nil {
		return err
	}
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	grant.ID = row.ID
	grant.CreatedAt = row.CreatedAt
	grant.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *CapabilityRepository) Update(grant *capability.Grant) error {
	row, err := capability.ToDataModel(grant)
	if err != nil {
		return err
	}
	if err := r.db.Save(row).Error; err != nil {
		return err
	}
	grant.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *CapabilityRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&capabilityDatamodel.Capability{}).Error
}

func (r *CapabilityRepository) DeleteExpiredBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("expires_at IS NOT NULL AND expires_at < ?", cutoff).
		Delete(&capabilityDatamodel.Capability{})
	return res.RowsAffected, res.Error
}
