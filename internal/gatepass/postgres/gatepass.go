package postgres

import (
	"errors"
	"time"

	gatepassDatamodel "github.com/frahmantamala/yardguard/internal/core/datamodel/gatepass"
	"github.com/frahmantamala/yardguard/internal/gatepass"
	"gorm.io/gorm"
)

// GatePassRepository implements the gatepass.Repository interface using GORM
type GatePassRepository struct {
	db *gorm.DB
}

func NewGatePassRepository(db *gorm.DB) gatepass.Repository {
	return &GatePassRepository{db: db}
}

func (r *GatePassRepository) Create(pass *gatepass.GatePass) error {
	row := gatepass.ToDataModel(pass)
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	pass.ID = row.ID
	pass.CreatedAt = row.CreatedAt
	pass.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *GatePassRepository) GetByID(id int64) (*gatepass.GatePass, error) {
	var row gatepassDatamodel.GatePass
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return gatepass.FromDataModel(&row), nil
}

func (r *GatePassRepository) List(limit, offset int) ([]*gatepass.GatePass, error) {
	var rows []*gatepassDatamodel.GatePass
	err := r.db.Order("issued_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return gatepass.FromDataModelSlice(rows), nil
}

func (r *GatePassRepository) Update(pass *gatepass.GatePass) error {
	row := gatepass.ToDataModel(pass)
	row.UpdatedAt = time.Now()
	if err := r.db.Save(row).Error; err != nil {
		return err
	}
	pass.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *GatePassRepository) UpdateStatus(id int64, status string, processedAt time.Time) error {
	return r.db.Model(&gatepassDatamodel.GatePass{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"processed_at": processedAt,
			"updated_at":   time.Now(),
		}).Error
}

func (r *GatePassRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&gatepassDatamodel.GatePass{}).Error
}
