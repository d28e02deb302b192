package auth_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/frahmantamala/yardguard/internal/auth"
	"github.com/frahmantamala/yardguard/internal/authz"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

type MockUserRepo struct {
	users      map[string]mockUser // keyed by email
	shouldFail bool
}

type mockUser struct {
	id           int64
	passwordHash string
	user         auth.User
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: make(map[string]mockUser)}
}

func (m *MockUserRepo) AddUser(id int64, email, password string, u auth.User) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u.ID = id
	u.Email = email
	m.users[email] = mockUser{id: id, passwordHash: string(hash), user: u}
}

func (m *MockUserRepo) GetPasswordForUsername(email string) (string, string, error) {
	if m.shouldFail {
		return "", "", errors.New("database error")
	}
	u, ok := m.users[email]
	if !ok {
		return "", "", errors.New("user not found")
	}
	return u.passwordHash, strconv.FormatInt(u.id, 10), nil
}

func (m *MockUserRepo) GetUserByID(userID int64) (*auth.User, error) {
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	for _, u := range m.users {
		if u.id == userID {
			user := u.user
			return &user, nil
		}
	}
	return nil, errors.New("user not found")
}

type MockCapSource struct {
	caps       map[int64][]authz.Capability
	shouldFail bool
}

func (m *MockCapSource) CapabilitiesForUser(userID int64) ([]authz.Capability, error) {
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	return m.caps[userID], nil
}

type MockOTPVerifier struct {
	valid map[int64]string
}

func (m *MockOTPVerifier) VerifyOTP(userID int64, code string) bool {
	return m.valid[userID] == code
}

var _ = Describe("Auth Service", func() {
	var (
		repo      *MockUserRepo
		capSource *MockCapSource
		otp       *MockOTPVerifier
		service   *auth.Service
	)

	BeforeEach(func() {
		repo = NewMockUserRepo()
		capSource = &MockCapSource{caps: make(map[int64][]authz.Capability)}
		otp = &MockOTPVerifier{valid: make(map[int64]string)}
		tokenGen := auth.NewJWTTokenGenerator(
			"test-access-secret-at-least-32-chars!",
			"test-refresh-secret-at-least-32-char!",
		)
		service = auth.NewService(repo, capSource, tokenGen, otp)

		repo.AddUser(7, "guard@yard.test", "correct-password", auth.User{
			Name:        "Guard",
			Role:        "security_officer",
			Department:  "security",
			YardID:      "yard-1",
			MFAEnrolled: true,
		})
		otp.valid[7] = "123456"
	})

	Describe("Authenticate", func() {
		It("should return tokens for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "guard@yard.test",
				Password: "correct-password",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
		})

		It("should reject a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "guard@yard.test",
				Password: "wrong",
			})
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("should reject an unknown user", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@yard.test",
				Password: "whatever",
			})
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("should reject missing fields", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "guard@yard.test"})
			Expect(err).To(HaveOccurred())
		})

		Context("with a second factor", func() {
			It("should set the mfa claim when the code is valid", func() {
				tokens, err := service.Authenticate(auth.LoginDTO{
					Email:    "guard@yard.test",
					Password: "correct-password",
					OTPCode:  "123456",
				})
				Expect(err).NotTo(HaveOccurred())

				claims, err := service.ValidateAccessToken(tokens.AccessToken)
				Expect(err).NotTo(HaveOccurred())
				Expect(claims.MFAVerified).To(BeTrue())
			})

			It("should still log in with an invalid code, without the mfa claim", func() {
				tokens, err := service.Authenticate(auth.LoginDTO{
					Email:    "guard@yard.test",
					Password: "correct-password",
					OTPCode:  "000000",
				})
				Expect(err).NotTo(HaveOccurred())

				claims, err := service.ValidateAccessToken(tokens.AccessToken)
				Expect(err).NotTo(HaveOccurred())
				Expect(claims.MFAVerified).To(BeFalse())
			})
		})
	})

	Describe("RefreshTokens", func() {
		It("should drop the mfa claim on refresh", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "guard@yard.test",
				Password: "correct-password",
				OTPCode:  "123456",
			})
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(refreshed.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.MFAVerified).To(BeFalse())
		})

		It("should reject garbage tokens", func() {
			_, err := service.RefreshTokens("not-a-token")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ValidateAccessToken", func() {
		It("should return claims for a valid token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "guard@yard.test",
				Password: "correct-password",
			})
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("7"))
			Expect(claims.Email).To(Equal("guard@yard.test"))
		})

		It("should reject a tampered token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "guard@yard.test",
				Password: "correct-password",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(tokens.AccessToken + "x")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetUserWithCapabilities", func() {
		BeforeEach(func() {
			capSource.caps[7] = []authz.Capability{
				{Module: authz.ModuleGatePass, Action: authz.ActionRead, Scope: authz.ScopeYardOnly},
			}
		})

		It("should attach the user's capability list", func() {
			user, err := service.GetUserWithCapabilities(7)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Role).To(Equal("security_officer"))
			Expect(user.Capabilities).To(HaveLen(1))
			Expect(user.Capabilities[0].Module).To(Equal(authz.ModuleGatePass))
		})

		It("should expose the evaluator's identity view", func() {
			user, err := service.GetUserWithCapabilities(7)
			Expect(err).NotTo(HaveOccurred())

			subject := user.Subject()
			Expect(subject.ID).To(Equal("7"))
			Expect(subject.Role).To(Equal("security_officer"))
			Expect(subject.Department).To(Equal("security"))
			Expect(subject.YardID).To(Equal("yard-1"))
		})

		It("should fail when capabilities cannot be loaded", func() {
			capSource.shouldFail = true
			_, err := service.GetUserWithCapabilities(7)
			Expect(err).To(HaveOccurred())
		})
	})
})
