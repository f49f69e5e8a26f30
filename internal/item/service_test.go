package item

import (
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestItemService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ItemService Suite")
}

type fakeRepo struct {
	active  map[string]*Item
	deleted map[string]*Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		active:  make(map[string]*Item),
		deleted: make(map[string]*Item),
	}
}

func (f *fakeRepo) Create(it *Item) error {
	f.active[it.ID] = it
	return nil
}

func (f *fakeRepo) GetByID(id string) (*Item, error) {
	it, ok := f.active[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	copied := *it
	return &copied, nil
}

func (f *fakeRepo) GetDeletedByID(id string) (*Item, error) {
	it, ok := f.deleted[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	copied := *it
	return &copied, nil
}

func (f *fakeRepo) CodeInUse(code string) (bool, error) {
	for _, it := range f.active {
		if it.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Update(it *Item) error {
	if _, ok := f.active[it.ID]; !ok {
		return ErrItemNotFound
	}
	f.active[it.ID] = it
	return nil
}

func (f *fakeRepo) MarkDeleted(id string, deletedAt time.Time, deletedBy string) error {
	it, ok := f.active[id]
	if !ok {
		return ErrItemNotFound
	}
	it.DeletedAt = &deletedAt
	it.DeletedBy = &deletedBy
	it.IsActive = false
	delete(f.active, id)
	f.deleted[id] = it
	return nil
}

func (f *fakeRepo) ClearDeleted(id string) error {
	it, ok := f.deleted[id]
	if !ok {
		return ErrNotDeleted
	}
	it.DeletedAt = nil
	it.DeletedBy = nil
	it.IsActive = true
	delete(f.deleted, id)
	f.active[id] = it
	return nil
}

func (f *fakeRepo) HardDelete(id string) error {
	if _, ok := f.active[id]; ok {
		delete(f.active, id)
		return nil
	}
	if _, ok := f.deleted[id]; ok {
		delete(f.deleted, id)
		return nil
	}
	return ErrItemNotFound
}

func (f *fakeRepo) List(filter ListFilter) ([]*Item, error) {
	var out []*Item
	source := f.active
	if filter.DeletedOnly {
		source = f.deleted
	}
	for _, it := range source {
		out = append(out, it)
	}
	return out, nil
}

type fakeCounter struct {
	counts map[string]int64
}

func (f *fakeCounter) CountForItem(itemID string) (int64, error) {
	return f.counts[itemID], nil
}

var _ = Describe("ItemService", func() {
	var (
		repo    *fakeRepo
		counter *fakeCounter
		service *Service
	)

	validCreate := func(code string) CreateItemDTO {
		return CreateItemDTO{
			Type:     TypePart,
			Code:     code,
			Name:     "Oil filter",
			Category: "filters",
			UnitCost: decimal.RequireFromString("8.50"),
			MinStock: 5,
			Location: "A-01",
		}
	}

	BeforeEach(func() {
		repo = newFakeRepo()
		counter = &fakeCounter{counts: make(map[string]int64)}
		service = NewService(repo, counter, slog.Default())
	})

	Describe("Create", func() {
		It("starts every item at zero stock", func() {
			created, err := service.Create(validCreate("FLT-001"), "actor-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(created.CurrentStock).To(BeZero())
			Expect(created.IsActive).To(BeTrue())
			Expect(created.CreatedBy).To(Equal("actor-1"))
		})

		It("rejects a code held by an active item", func() {
			_, err := service.Create(validCreate("FLT-001"), "actor-1")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(validCreate("FLT-001"), "actor-1")
			Expect(err).To(MatchError(ErrDuplicateCode))
		})

		It("allows reusing the code of a soft-deleted item", func() {
			first, err := service.Create(validCreate("FLT-001"), "actor-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(service.SoftDelete(first.ID, "actor-1")).To(Succeed())

			_, err = service.Create(validCreate("FLT-001"), "actor-1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects malformed codes", func() {
			dto := validCreate("flt 001")
			_, err := service.Create(dto, "actor-1")
			Expect(err).To(BeAssignableToTypeOf(ValidationError{}))
		})
	})

	Describe("deletion guard", func() {
		It("blocks soft delete when the ledger references the item", func() {
			created, err := service.Create(validCreate("FLT-002"), "actor-1")
			Expect(err).NotTo(HaveOccurred())
			counter.counts[created.ID] = 3

			err = service.SoftDelete(created.ID, "actor-1")

			var hasMovements *HasMovementsError
			Expect(err).To(BeAssignableToTypeOf(hasMovements))
			hasMovements = err.(*HasMovementsError)
			Expect(hasMovements.Count).To(Equal(int64(3)))
		})

		It("blocks hard delete the same way", func() {
			created, err := service.Create(validCreate("FLT-003"), "actor-1")
			Expect(err).NotTo(HaveOccurred())
			counter.counts[created.ID] = 1

			err = service.HardDelete(created.ID)
			var hasMovements *HasMovementsError
			Expect(err).To(BeAssignableToTypeOf(hasMovements))
		})

		It("allows both when the item has no movements", func() {
			first, err := service.Create(validCreate("FLT-004"), "actor-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(service.SoftDelete(first.ID, "actor-1")).To(Succeed())

			second, err := service.Create(validCreate("FLT-005"), "actor-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(service.HardDelete(second.ID)).To(Succeed())
		})

		It("hard deletes an already soft-deleted item", func() {
			created, err := service.Create(validCreate("FLT-006"), "actor-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(service.SoftDelete(created.ID, "actor-1")).To(Succeed())
			Expect(service.HardDelete(created.ID)).To(Succeed())
		})
	})

	Describe("Restore", func() {
		It("round-trips an item through delete and restore", func() {
			created, err := service.Create(validCreate("FLT-007"), "actor-1")
			Expect(err).NotTo(HaveOccurred())

			Expect(service.SoftDelete(created.ID, "actor-2")).To(Succeed())
			_, err = service.Get(created.ID)
			Expect(err).To(MatchError(ErrItemNotFound))

			restored, err := service.Restore(created.ID, "actor-2")
			Expect(err).NotTo(HaveOccurred())
			Expect(restored.ID).To(Equal(created.ID))
			Expect(restored.Code).To(Equal(created.Code))
			Expect(restored.Name).To(Equal(created.Name))
			Expect(restored.DeletedAt).To(BeNil())
			Expect(restored.DeletedBy).To(BeNil())
			Expect(restored.IsActive).To(BeTrue())
		})

		It("keeps the restored code unique-checkable again", func() {
			created, err := service.Create(validCreate("FLT-008"), "actor-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(service.SoftDelete(created.ID, "actor-1")).To(Succeed())

			_, err = service.Restore(created.ID, "actor-1")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(validCreate("FLT-008"), "actor-1")
			Expect(err).To(MatchError(ErrDuplicateCode))
		})

		It("refuses to restore when the code was reused", func() {
			first, err := service.Create(validCreate("FLT-009"), "actor-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(service.SoftDelete(first.ID, "actor-1")).To(Succeed())

			_, err = service.Create(validCreate("FLT-009"), "actor-1")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Restore(first.ID, "actor-1")
			Expect(err).To(MatchError(ErrDuplicateCode))
		})
	})

	Describe("StockStatus", func() {
		It("classifies out, low and ok", func() {
			it := &Item{CurrentStock: 0, MinStock: 10}
			Expect(it.StockStatus()).To(Equal(StockStatusOut))

			it.CurrentStock = 9
			Expect(it.StockStatus()).To(Equal(StockStatusLow))

			it.CurrentStock = 10
			Expect(it.StockStatus()).To(Equal(StockStatusLow))

			it.CurrentStock = 11
			Expect(it.StockStatus()).To(Equal(StockStatusOK))
		})
	})
})
