package postgres

import (
	"database/sql"
	"fmt"

	"github.com/frahmantamala/yardguard/internal/auth"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForUsername(email string) (string, string, error) {
	var passwordHash string
	var userID string
	query := `SELECT id, password_hash FROM users WHERE email = ? AND is_active = true`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", "", fmt.Errorf("user not found")
		}
		return "", "", err
	}
	return passwordHash, userID, nil
}

func (r *Repository) GetUserByID(userID int64) (*auth.User, error) {
	var user auth.User
	query := `SELECT id, email, name, role, department, yard_id, mfa_enrolled
	          FROM users WHERE id = ? AND is_active = true`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Department, &user.YardID, &user.MFAEnrolled); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// VerifyOTP compares a submitted second-factor code against the stored
// hash. Users without an enrolled factor never verify.
func (r *Repository) VerifyOTP(userID int64, code string) bool {
	var otpHash sql.NullString
	query := `SELECT otp_hash FROM users WHERE id = ? AND mfa_enrolled = true AND is_active = true`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&otpHash); err != nil {
		return false
	}
	if !otpHash.Valid || otpHash.String == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(otpHash.String), []byte(code)) == nil
}
