package postgres

import (
	"errors"

	userDatamodel "github.com/frahmantamala/yardguard/internal/core/datamodel/user"
	"github.com/frahmantamala/yardguard/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(userID int64) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.Where("id = ? AND is_active = true", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}
