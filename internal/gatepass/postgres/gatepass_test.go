package postgres_test

import (
	"testing"
	"time"

	gatepassDatamodel "github.com/frahmantamala/yardguard/internal/core/datamodel/gatepass"
	"github.com/frahmantamala/yardguard/internal/gatepass"
	gatepassPostgres "github.com/frahmantamala/yardguard/internal/gatepass/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGatePassPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "GatePass Postgres Suite")
}

var _ = Describe("GatePass PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo gatepass.Repository
	)

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&gatepassDatamodel.GatePass{})
		Expect(err).NotTo(HaveOccurred())

		repo = gatepassPostgres.NewGatePassRepository(db)
	})

	newPass := func(number string, issuedAt time.Time) *gatepass.GatePass {
		return &gatepass.GatePass{
			PassNumber:   number,
			VehiclePlate: "B 1234 XYZ",
			VehicleType:  "truck",
			DriverName:   "Joko",
			Status:       gatepass.StatusPending,
			AmountIDR:    250000,
			YardID:       "yard-1",
			Department:   "logistics",
			CreatedBy:    "7",
			IssuedAt:     issuedAt,
		}
	}

	Describe("Create", func() {
		It("should persist a pass and assign an ID", func() {
			pass := newPass("GP-test0001", time.Now())
			err := repo.Create(pass)
			Expect(err).NotTo(HaveOccurred())
			Expect(pass.ID).To(BeNumerically(">", 0))
			Expect(pass.CreatedAt).NotTo(BeZero())
		})
	})

	Describe("GetByID", func() {
		It("should round-trip every column", func() {
			pass := newPass("GP-test0002", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
			pass.AssignedTo = "12"
			pass.Flagged = true
			pass.Notes = "cek muatan"
			Expect(repo.Create(pass)).To(Succeed())

			found, err := repo.GetByID(pass.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.PassNumber).To(Equal("GP-test0002"))
			Expect(found.VehiclePlate).To(Equal("B 1234 XYZ"))
			Expect(found.DriverName).To(Equal("Joko"))
			Expect(found.Status).To(Equal(gatepass.StatusPending))
			Expect(found.AmountIDR).To(Equal(int64(250000)))
			Expect(found.YardID).To(Equal("yard-1"))
			Expect(found.Department).To(Equal("logistics"))
			Expect(found.CreatedBy).To(Equal("7"))
			Expect(found.AssignedTo).To(Equal("12"))
			Expect(found.Flagged).To(BeTrue())
			Expect(found.Notes).To(Equal("cek muatan"))
		})

		It("should return ErrRecordNotFound for a missing pass", func() {
			_, err := repo.GetByID(999)
			Expect(err).To(Equal(gorm.ErrRecordNotFound))
		})
	})

	Describe("List", func() {
		It("should order passes newest first", func() {
			older := newPass("GP-old", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
			newer := newPass("GP-new", time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
			Expect(repo.Create(older)).To(Succeed())
			Expect(repo.Create(newer)).To(Succeed())

			passes, err := repo.List(10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(passes).To(HaveLen(2))
			Expect(passes[0].PassNumber).To(Equal("GP-new"))
			Expect(passes[1].PassNumber).To(Equal("GP-old"))
		})

		It("should respect limit and offset", func() {
			for i, number := range []string{"GP-a", "GP-b", "GP-c"} {
				pass := newPass(number, time.Date(2025, 6, 1+i, 8, 0, 0, 0, time.UTC))
				Expect(repo.Create(pass)).To(Succeed())
			}

			passes, err := repo.List(1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(passes).To(HaveLen(1))
			Expect(passes[0].PassNumber).To(Equal("GP-b"))
		})
	})

	Describe("Update", func() {
		It("should persist field changes", func() {
			pass := newPass("GP-test0003", time.Now())
			Expect(repo.Create(pass)).To(Succeed())

			pass.DriverName = "Slamet"
			pass.Notes = "ganti sopir"
			Expect(repo.Update(pass)).To(Succeed())

			found, err := repo.GetByID(pass.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.DriverName).To(Equal("Slamet"))
			Expect(found.Notes).To(Equal("ganti sopir"))
		})
	})

	Describe("UpdateStatus", func() {
		It("should set status and processed_at", func() {
			pass := newPass("GP-test0004", time.Now())
			Expect(repo.Create(pass)).To(Succeed())

			processedAt := time.Date(2025, 6, 3, 10, 30, 0, 0, time.UTC)
			Expect(repo.UpdateStatus(pass.ID, gatepass.StatusApproved, processedAt)).To(Succeed())

			found, err := repo.GetByID(pass.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(gatepass.StatusApproved))
			Expect(found.ProcessedAt).NotTo(BeNil())
		})
	})

	Describe("Delete", func() {
		It("should remove the pass", func() {
			pass := newPass("GP-test0005", time.Now())
			Expect(repo.Create(pass)).To(Succeed())

			Expect(repo.Delete(pass.ID)).To(Succeed())

			_, err := repo.GetByID(pass.ID)
			Expect(err).To(Equal(gorm.ErrRecordNotFound))
		})
	})
})
