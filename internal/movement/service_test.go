package movement

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dmarquez/inventory-management/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestMovementService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "MovementService Suite")
}

type fakeRepo struct {
	recorded   []*Movement
	pairCalls  [][2]*Movement
	applyErr   error
	byID       map[string]*Movement
	annotated  map[string][2]*string
	countTotal int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:      make(map[string]*Movement),
		annotated: make(map[string][2]*string),
	}
}

func (f *fakeRepo) RecordAndApply(m *Movement, delta int) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.recorded = append(f.recorded, m)
	f.byID[m.ID] = m
	return nil
}

func (f *fakeRepo) RecordPair(out, in *Movement) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.pairCalls = append(f.pairCalls, [2]*Movement{out, in})
	f.byID[out.ID] = out
	f.byID[in.ID] = in
	return nil
}

func (f *fakeRepo) GetByID(id string) (*Movement, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, ErrMovementNotFound
	}
	return m, nil
}

func (f *fakeRepo) UpdateAnnotations(id string, notes, documentURL *string) error {
	if _, ok := f.byID[id]; !ok {
		return ErrMovementNotFound
	}
	f.annotated[id] = [2]*string{notes, documentURL}
	if notes != nil {
		f.byID[id].Notes = notes
	}
	if documentURL != nil {
		f.byID[id].DocumentURL = documentURL
	}
	return nil
}

func (f *fakeRepo) CountForItem(itemID string) (int64, error) {
	return f.countTotal, nil
}

func (f *fakeRepo) List(filter ListFilter) ([]*Movement, error) {
	return f.recorded, nil
}

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(ctx context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

var _ = Describe("MovementService", func() {
	var (
		repo    *fakeRepo
		bus     *fakeBus
		service *Service
	)

	BeforeEach(func() {
		repo = newFakeRepo()
		bus = &fakeBus{}
		service = NewService(repo, bus, slog.Default())
	})

	Describe("RecordEntry", func() {
		It("records with computed total cost", func() {
			m, err := service.RecordEntry(EntryDTO{
				ItemID:   "item-1",
				Quantity: 20,
				UnitCost: decimal.RequireFromString("95.00"),
				Reason:   "purchase",
			}, "actor-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(m.Type).To(Equal(TypeEntry))
			Expect(m.Direction).To(Equal(DirectionIn))
			Expect(m.TotalCost.Equal(decimal.RequireFromString("1900.00"))).To(BeTrue())
			Expect(m.CreatedBy).To(Equal("actor-1"))
			Expect(repo.recorded).To(HaveLen(1))
		})

		It("rejects non-positive quantities", func() {
			_, err := service.RecordEntry(EntryDTO{
				ItemID:   "item-1",
				Quantity: 0,
				UnitCost: decimal.RequireFromString("1.00"),
				Reason:   "purchase",
			}, "actor-1")

			Expect(err).To(BeAssignableToTypeOf(ValidationError{}))
			Expect(repo.recorded).To(BeEmpty())
		})

		It("rejects unit costs above the cap", func() {
			_, err := service.RecordEntry(EntryDTO{
				ItemID:   "item-1",
				Quantity: 1,
				UnitCost: decimal.RequireFromString("1000000001"),
				Reason:   "purchase",
			}, "actor-1")

			Expect(err).To(BeAssignableToTypeOf(ValidationError{}))
		})

		It("does not publish events", func() {
			_, err := service.RecordEntry(EntryDTO{
				ItemID:   "item-1",
				Quantity: 1,
				UnitCost: decimal.RequireFromString("5.00"),
				Reason:   "purchase",
			}, "actor-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(bus.published).To(BeEmpty())
		})
	})

	Describe("RecordExit", func() {
		It("records and publishes the movement event", func() {
			lot := "LOT-2026-09"
			m, err := service.RecordExit(ExitDTO{
				ItemID:    "item-1",
				Quantity:  8,
				UnitCost:  decimal.RequireFromString("95.00"),
				LotNumber: &lot,
				Reason:    "Venta",
			}, "actor-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(m.TotalCost.Equal(decimal.RequireFromString("760.00"))).To(BeTrue())
			Expect(*m.LotNumber).To(Equal(lot))

			Expect(bus.published).To(HaveLen(1))
			Expect(bus.published[0].EventType()).To(Equal(events.EventTypeMovementRecorded))
			data, ok := bus.published[0].Payload().(events.MovementRecordedData)
			Expect(ok).To(BeTrue())
			Expect(data.MovementID).To(Equal(m.ID))
			Expect(data.MovementType).To(Equal(TypeExit))
		})

		It("surfaces repository refusals without publishing", func() {
			repo.applyErr = &InsufficientStockError{ItemID: "item-1", Requested: 6, Available: 4}

			_, err := service.RecordExit(ExitDTO{
				ItemID:   "item-1",
				Quantity: 6,
				UnitCost: decimal.RequireFromString("10.00"),
				Reason:   "Venta",
			}, "actor-1")

			Expect(err).To(MatchError(repo.applyErr))
			Expect(bus.published).To(BeEmpty())
		})
	})

	Describe("RecordAdjustment", func() {
		It("requires an explicit direction", func() {
			_, err := service.RecordAdjustment(AdjustmentDTO{
				ItemID:    "item-1",
				Direction: "SIDEWAYS",
				Quantity:  1,
				UnitCost:  decimal.RequireFromString("1.00"),
				Reason:    "count",
			}, "actor-1")

			Expect(err).To(BeAssignableToTypeOf(ValidationError{}))
		})

		It("records OUT adjustments with the stated direction", func() {
			m, err := service.RecordAdjustment(AdjustmentDTO{
				ItemID:    "item-1",
				Direction: DirectionOut,
				Quantity:  3,
				UnitCost:  decimal.RequireFromString("2.00"),
				Reason:    "shrinkage",
			}, "actor-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(m.Type).To(Equal(TypeAdjustment))
			Expect(m.Direction).To(Equal(DirectionOut))
		})
	})

	Describe("RecordTransfer", func() {
		It("produces an OUT and an IN leg sharing the lot", func() {
			lot := "LOT-2026-09"
			legs, err := service.RecordTransfer(TransferDTO{
				SourceItemID:      "item-1",
				DestinationItemID: "item-2",
				Quantity:          4,
				UnitCost:          decimal.RequireFromString("10.00"),
				LotNumber:         &lot,
				Reason:            "relocation",
			}, "actor-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(legs).To(HaveLen(2))
			Expect(legs[0].Type).To(Equal(TypeTransfer))
			Expect(legs[0].Direction).To(Equal(DirectionOut))
			Expect(legs[0].ItemID).To(Equal("item-1"))
			Expect(legs[1].Direction).To(Equal(DirectionIn))
			Expect(legs[1].ItemID).To(Equal("item-2"))
			Expect(*legs[0].LotNumber).To(Equal(lot))
			Expect(*legs[1].LotNumber).To(Equal(lot))
			Expect(repo.pairCalls).To(HaveLen(1))
		})

		It("rejects a transfer onto the same item", func() {
			_, err := service.RecordTransfer(TransferDTO{
				SourceItemID:      "item-1",
				DestinationItemID: "item-1",
				Quantity:          1,
				UnitCost:          decimal.RequireFromString("1.00"),
				Reason:            "relocation",
			}, "actor-1")

			Expect(err).To(BeAssignableToTypeOf(ValidationError{}))
		})
	})

	Describe("UpdateAnnotations", func() {
		It("patches an existing movement", func() {
			m, err := service.RecordEntry(EntryDTO{
				ItemID:   "item-1",
				Quantity: 1,
				UnitCost: decimal.RequireFromString("5.00"),
				Reason:   "purchase",
			}, "actor-1")
			Expect(err).NotTo(HaveOccurred())

			url := "https://storage.local/doc.pdf"
			got, err := service.UpdateAnnotations(m.ID, AnnotateDTO{DocumentURL: &url})
			Expect(err).NotTo(HaveOccurred())
			Expect(*got.DocumentURL).To(Equal(url))
		})

		It("rejects an empty patch", func() {
			_, err := service.UpdateAnnotations("whatever", AnnotateDTO{})
			Expect(err).To(BeAssignableToTypeOf(ValidationError{}))
		})
	})
})
