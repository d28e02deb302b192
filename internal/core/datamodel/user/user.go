package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role"`
	Department   string    `gorm:"column:department"`
	YardID       string    `gorm:"column:yard_id"`
	MFAEnrolled  bool      `gorm:"column:mfa_enrolled;default:false"`
	OTPHash      string    `gorm:"column:otp_hash"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}
