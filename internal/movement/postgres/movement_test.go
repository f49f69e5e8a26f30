package postgres

import (
	"sync"
	"testing"
	"time"

	itemDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/item"
	movementDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/movement"
	"github.com/dmarquez/inventory-management/internal/item"
	"github.com/dmarquez/inventory-management/internal/movement"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMovementRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "MovementRepository Suite")
}

var _ = Describe("MovementRepository", func() {
	var (
		db   *gorm.DB
		repo *MovementRepository
	)

	newItem := func(code string, stock int) *itemDatamodel.Item {
		now := time.Now()
		return &itemDatamodel.Item{
			ID:           uuid.NewString(),
			Type:         "PART",
			Code:         code,
			Name:         "part " + code,
			Category:     "misc",
			UnitCost:     decimal.RequireFromString("10.00"),
			CurrentStock: stock,
			MinStock:     2,
			Location:     "A-01",
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
			CreatedBy:    "tester",
		}
	}

	newExit := func(itemID string, qty int, cost string) *movement.Movement {
		unitCost := decimal.RequireFromString(cost)
		return &movement.Movement{
			ID:        uuid.NewString(),
			ItemID:    itemID,
			Type:      movement.TypeExit,
			Direction: movement.DirectionOut,
			Quantity:  qty,
			UnitCost:  unitCost,
			TotalCost: unitCost.Mul(decimal.NewFromInt(int64(qty))),
			Reason:    "sale",
			CreatedAt: time.Now(),
			CreatedBy: "tester",
		}
	}

	newEntry := func(itemID string, qty int, cost string) *movement.Movement {
		m := newExit(itemID, qty, cost)
		m.Type = movement.TypeEntry
		m.Direction = movement.DirectionIn
		m.Reason = "purchase"
		return m
	}

	currentStock := func(itemID string) int {
		var dm itemDatamodel.Item
		Expect(db.Where("id = ?", itemID).First(&dm).Error).NotTo(HaveOccurred())
		return dm.CurrentStock
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		// one connection so ":memory:" is a single shared database and
		// concurrent transactions serialize instead of erroring
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		err = db.AutoMigrate(&itemDatamodel.Item{}, &movementDatamodel.Movement{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewMovementRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	Describe("RecordAndApply", func() {
		It("increments stock on entry", func() {
			it := newItem("FLT-001", 0)
			Expect(db.Create(it).Error).NotTo(HaveOccurred())

			err := repo.RecordAndApply(newEntry(it.ID, 20, "95.00"), 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(currentStock(it.ID)).To(Equal(20))
		})

		It("decrements stock on exit when enough is available", func() {
			it := newItem("FLT-002", 10)
			Expect(db.Create(it).Error).NotTo(HaveOccurred())

			err := repo.RecordAndApply(newExit(it.ID, 6, "10.00"), -6)
			Expect(err).NotTo(HaveOccurred())
			Expect(currentStock(it.ID)).To(Equal(4))
		})

		It("refuses an exit that would go negative and leaves no ledger row", func() {
			it := newItem("FLT-003", 5)
			Expect(db.Create(it).Error).NotTo(HaveOccurred())

			err := repo.RecordAndApply(newExit(it.ID, 6, "10.00"), -6)

			var insufficient *movement.InsufficientStockError
			Expect(err).To(BeAssignableToTypeOf(insufficient))
			insufficient = err.(*movement.InsufficientStockError)
			Expect(insufficient.Available).To(Equal(5))
			Expect(insufficient.Requested).To(Equal(6))

			Expect(currentStock(it.ID)).To(Equal(5))

			var count int64
			Expect(db.Model(&movementDatamodel.Movement{}).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("returns item not found for unknown or deleted items", func() {
			err := repo.RecordAndApply(newEntry(uuid.NewString(), 1, "10.00"), 1)
			Expect(err).To(MatchError(item.ErrItemNotFound))

			deleted := newItem("FLT-004", 3)
			now := time.Now()
			deleted.DeletedAt = &now
			Expect(db.Create(deleted).Error).NotTo(HaveOccurred())

			err = repo.RecordAndApply(newEntry(deleted.ID, 1, "10.00"), 1)
			Expect(err).To(MatchError(item.ErrItemNotFound))
		})

		It("keeps the balance equal to the ledger sum across a sequence", func() {
			it := newItem("FLT-005", 0)
			Expect(db.Create(it).Error).NotTo(HaveOccurred())

			Expect(repo.RecordAndApply(newEntry(it.ID, 20, "95.00"), 20)).To(Succeed())
			Expect(repo.RecordAndApply(newExit(it.ID, 8, "95.00"), -8)).To(Succeed())
			Expect(repo.RecordAndApply(newEntry(it.ID, 5, "90.00"), 5)).To(Succeed())
			Expect(repo.RecordAndApply(newExit(it.ID, 17, "90.00"), -17)).To(Succeed())

			// 20 - 8 + 5 - 17 = 0, and never negative along the way
			Expect(currentStock(it.ID)).To(Equal(0))

			var entries, exits int
			rows, err := repo.List(movement.ListFilter{ItemID: it.ID, Limit: 50})
			Expect(err).NotTo(HaveOccurred())
			for _, m := range rows {
				switch m.Type {
				case movement.TypeEntry:
					entries += m.Quantity
				case movement.TypeExit:
					exits += m.Quantity
				}
			}
			Expect(entries - exits).To(Equal(0))
		})

		It("lets exactly one of two concurrent exits through", func() {
			it := newItem("FLT-006", 10)
			Expect(db.Create(it).Error).NotTo(HaveOccurred())

			results := make([]error, 2)
			var wg sync.WaitGroup
			wg.Add(2)
			for i := 0; i < 2; i++ {
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					results[i] = repo.RecordAndApply(newExit(it.ID, 6, "10.00"), -6)
				}(i)
			}
			wg.Wait()

			var succeeded, failed int
			for _, err := range results {
				if err == nil {
					succeeded++
					continue
				}
				failed++
				var insufficient *movement.InsufficientStockError
				Expect(err).To(BeAssignableToTypeOf(insufficient))
			}
			Expect(succeeded).To(Equal(1))
			Expect(failed).To(Equal(1))

			Expect(currentStock(it.ID)).To(Equal(4))

			count, err := repo.CountForItem(it.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})
	})

	Describe("RecordPair", func() {
		It("moves stock between items atomically", func() {
			src := newItem("SRC-001", 10)
			dst := newItem("DST-001", 1)
			Expect(db.Create(src).Error).NotTo(HaveOccurred())
			Expect(db.Create(dst).Error).NotTo(HaveOccurred())

			out := newExit(src.ID, 4, "10.00")
			out.Type = movement.TypeTransfer
			in := newEntry(dst.ID, 4, "10.00")
			in.Type = movement.TypeTransfer

			Expect(repo.RecordPair(out, in)).To(Succeed())
			Expect(currentStock(src.ID)).To(Equal(6))
			Expect(currentStock(dst.ID)).To(Equal(5))
		})

		It("writes nothing when the source cannot cover the transfer", func() {
			src := newItem("SRC-002", 2)
			dst := newItem("DST-002", 0)
			Expect(db.Create(src).Error).NotTo(HaveOccurred())
			Expect(db.Create(dst).Error).NotTo(HaveOccurred())

			out := newExit(src.ID, 4, "10.00")
			out.Type = movement.TypeTransfer
			in := newEntry(dst.ID, 4, "10.00")
			in.Type = movement.TypeTransfer

			err := repo.RecordPair(out, in)
			var insufficient *movement.InsufficientStockError
			Expect(err).To(BeAssignableToTypeOf(insufficient))

			Expect(currentStock(src.ID)).To(Equal(2))
			Expect(currentStock(dst.ID)).To(Equal(0))

			var count int64
			Expect(db.Model(&movementDatamodel.Movement{}).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})

	Describe("UpdateAnnotations", func() {
		It("patches notes and document url only", func() {
			it := newItem("FLT-007", 5)
			Expect(db.Create(it).Error).NotTo(HaveOccurred())

			m := newExit(it.ID, 1, "10.00")
			Expect(repo.RecordAndApply(m, -1)).To(Succeed())

			notes := "checked by supervisor"
			url := "https://storage.local/receipts/x.pdf"
			Expect(repo.UpdateAnnotations(m.ID, &notes, &url)).To(Succeed())

			got, err := repo.GetByID(m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*got.Notes).To(Equal(notes))
			Expect(*got.DocumentURL).To(Equal(url))
			Expect(got.Quantity).To(Equal(1))
		})

		It("returns not found for an unknown movement", func() {
			notes := "x"
			err := repo.UpdateAnnotations(uuid.NewString(), &notes, nil)
			Expect(err).To(MatchError(movement.ErrMovementNotFound))
		})
	})

	Describe("List", func() {
		It("filters by item, type and date range", func() {
			it := newItem("FLT-008", 0)
			other := newItem("FLT-009", 0)
			Expect(db.Create(it).Error).NotTo(HaveOccurred())
			Expect(db.Create(other).Error).NotTo(HaveOccurred())

			Expect(repo.RecordAndApply(newEntry(it.ID, 5, "10.00"), 5)).To(Succeed())
			Expect(repo.RecordAndApply(newExit(it.ID, 2, "10.00"), -2)).To(Succeed())
			Expect(repo.RecordAndApply(newEntry(other.ID, 1, "10.00"), 1)).To(Succeed())

			rows, err := repo.List(movement.ListFilter{ItemID: it.ID, Limit: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))

			rows, err = repo.List(movement.ListFilter{Type: movement.TypeExit, Limit: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))

			future := time.Now().Add(time.Hour)
			rows, err = repo.List(movement.ListFilter{From: &future, Limit: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeEmpty())
		})
	})
})
