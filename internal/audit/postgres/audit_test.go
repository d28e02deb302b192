package postgres_test

import (
	"testing"
	"time"

	"github.com/frahmantamala/yardguard/internal/audit"
	auditPostgres "github.com/frahmantamala/yardguard/internal/audit/postgres"
	auditDatamodel "github.com/frahmantamala/yardguard/internal/core/datamodel/audit"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAuditPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Postgres Suite")
}

var _ = Describe("Audit PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo audit.RepositoryAPI
	)

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&auditDatamodel.AccessDecision{})
		Expect(err).NotTo(HaveOccurred())

		repo = auditPostgres.NewAuditRepository(db)
	})

	newDecision := func(id, userID string, allowed bool, decidedAt time.Time) *audit.Decision {
		return &audit.Decision{
			ID:        id,
			UserID:    userID,
			Module:    "gate_pass",
			Action:    "read",
			Allowed:   allowed,
			ClientIP:  "10.0.0.5",
			DecidedAt: decidedAt,
		}
	}

	Describe("ListByUser", func() {
		It("should return the user's decisions newest first", func() {
			older := newDecision("d1", "7", true, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
			newer := newDecision("d2", "7", false, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
			other := newDecision("d3", "9", true, time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC))
			Expect(repo.Create(older)).To(Succeed())
			Expect(repo.Create(newer)).To(Succeed())
			Expect(repo.Create(other)).To(Succeed())

			decisions, err := repo.ListByUser("7", 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(decisions).To(HaveLen(2))
			Expect(decisions[0].ID).To(Equal("d2"))
			Expect(decisions[1].ID).To(Equal("d1"))
		})
	})

	Describe("ListDenied", func() {
		It("should return only denials", func() {
			Expect(repo.Create(newDecision("d1", "7", true, time.Now()))).To(Succeed())
			Expect(repo.Create(newDecision("d2", "7", false, time.Now()))).To(Succeed())

			decisions, err := repo.ListDenied(10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(decisions).To(HaveLen(1))
			Expect(decisions[0].ID).To(Equal("d2"))
		})
	})

	Describe("DeleteBefore", func() {
		It("should remove decisions older than the cutoff", func() {
			cutoff := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
			Expect(repo.Create(newDecision("old", "7", true, cutoff.Add(-time.Hour)))).To(Succeed())
			Expect(repo.Create(newDecision("fresh", "7", true, cutoff.Add(time.Hour)))).To(Succeed())

			n, err := repo.DeleteBefore(cutoff)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(1)))

			remaining, err := repo.ListByUser("7", 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(remaining).To(HaveLen(1))
			Expect(remaining[0].ID).To(Equal("fresh"))
		})
	})
})
