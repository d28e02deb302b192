package postgres

import (
	"time"

	"github.com/frahmantamala/yardguard/internal/audit"
	auditDatamodel "github.com/frahmantamala/yardguard/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(decision *audit.Decision) error {
	return r.db.Create(audit.ToDataModel(decision)).Error
}

func (r *AuditRepository) ListByUser(userID string, limit, offset int) ([]*audit.Decision, error) {
	var rows []*auditDatamodel.AccessDecision
	err := r.db.Where("user_id = ?", userID).
		Order("decided_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return audit.FromDataModelSlice(rows), nil
}

func (r *AuditRepository) ListDenied(limit, offset int) ([]*audit.Decision, error) {
	var rows []*auditDatamodel.AccessDecision
	err := r.db.Where("allowed = false").
		Order("decided_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return audit.FromDataModelSlice(rows), nil
}

func (r *AuditRepository) DeleteBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("decided_at < ?", cutoff).
		Delete(&auditDatamodel.AccessDecision{})
	return res.RowsAffected, res.Error
}
