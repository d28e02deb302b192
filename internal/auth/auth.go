package auth

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/yardguard/internal/authz"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserWithCapabilities(userID int64) (*User, error)
	HashPassword(password string) (string, error)
}

type RepositoryAPI interface {
	GetPasswordForUsername(email string) (passwordHash string, userID string, err error)
	GetUserByID(userID int64) (*User, error)
}

// CapabilitySource loads the engine-facing grants for a user. Satisfied by
// the capability service; declared here so auth does not import it.
type CapabilitySource interface {
	CapabilitiesForUser(userID int64) ([]authz.Capability, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID, email string, mfaVerified bool) (token string, err error)
	GenerateRefreshToken(userID, email string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// User is the authenticated identity plus everything the evaluator needs:
// the identity fields the scope filter cross-references and the full
// capability list loaded once per request.
type User struct {
	ID           int64              `json:"id"`
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	Role         string             `json:"role"`
	Department   string             `json:"department"`
	YardID       string             `json:"yard_id"`
	MFAEnrolled  bool               `json:"mfa_enrolled"`
	Capabilities []authz.Capability `json:"-"`
}

// Subject converts the user into the evaluator's identity view.
func (u *User) Subject() authz.Subject {
	return authz.Subject{
		ID:         formatUserID(u.ID),
		Role:       u.Role,
		Department: u.Department,
		YardID:     u.YardID,
	}
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims. MFAVerified records whether the
// session completed a second factor; the context gate reads it from the
// request's access context, never from storage.
type Claims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	MFAVerified bool   `json:"mfa,omitempty"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
)

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
