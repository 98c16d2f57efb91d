package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	donationserrors "bloodbank/internal/donations/errors"
	mongotx "bloodbank/pkg/db/mongo"
	"bloodbank/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore holds bookings, units and events in process. It backs the
// three donation repositories for tests and local runs. Transactions run fn
// directly without rollback.
type MemoryStore struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	units    map[string]*model.Unit
	events   map[string]*model.Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: make(map[string]*model.Booking),
		units:    make(map[string]*model.Unit),
		events:   make(map[string]*model.Event),
	}
}

func (s *MemoryStore) PutBooking(b *model.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.bookings[b.ID] = &cp
}

func (s *MemoryStore) PutUnit(u *model.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[u.ID] = cloneUnit(u)
}

func (s *MemoryStore) PutEvent(e *model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.events[e.ID] = &cp
}

// Booking returns a copy of the stored booking, or nil.
func (s *MemoryStore) Booking(id string) *model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

// Unit returns a copy of the stored unit, or nil.
func (s *MemoryStore) Unit(id string) *model.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[id]
	if !ok {
		return nil
	}
	return cloneUnit(u)
}

// UnitCount returns how many units are stored.
func (s *MemoryStore) UnitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.units)
}

func cloneUnit(u *model.Unit) *model.Unit {
	cp := *u
	if u.ExpiryDate != nil {
		t := *u.ExpiryDate
		cp.ExpiryDate = &t
	}
	if u.UsedAt != nil {
		t := *u.UsedAt
		cp.UsedAt = &t
	}
	return &cp
}

func (s *MemoryStore) Bookings() BookingRepository { return memoryBookings{s} }
func (s *MemoryStore) Units() UnitRepository       { return memoryUnits{s} }
func (s *MemoryStore) Events() EventRepository     { return memoryEvents{s} }

type memoryBookings struct{ s *MemoryStore }

func (r memoryBookings) FindAll(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.Booking
	for _, b := range r.s.bookings {
		if filter.DonorID != "" && b.DonorID != filter.DonorID {
			continue
		}
		if !inRange(b.ScheduledDate, filter.From, filter.To) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryBookings) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if b := r.s.Booking(id); b != nil {
		return b, nil
	}
	return nil, donationserrors.ErrBookingNotFound
}

func (r memoryBookings) update(id string, fn func(b *model.Booking)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return donationserrors.ErrBookingNotFound
	}
	fn(b)
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (r memoryBookings) UpdateStatus(ctx context.Context, id string, rawStatus string) error {
	return r.update(id, func(b *model.Booking) { b.RawStatus = rawStatus })
}

func (r memoryBookings) LinkUnit(ctx context.Context, id string, unitID string) error {
	return r.update(id, func(b *model.Booking) {
		b.UnitID = unitID
		b.RawStatus = model.RawCompleted
	})
}

func (r memoryBookings) UpdateMetadata(ctx context.Context, id string, update model.BookingUpdate) error {
	return r.update(id, func(b *model.Booking) {
		if update.ScheduledDate != nil {
			b.ScheduledDate = update.ScheduledDate.UTC()
		}
		if update.HospitalName != nil {
			b.HospitalName = *update.HospitalName
		}
		if update.Location != nil {
			b.Location = *update.Location
		}
	})
}

func (r memoryBookings) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return donationserrors.ErrBookingNotFound
	}
	if strings.EqualFold(b.RawStatus, model.RawCompleted) || b.UnitID != "" {
		return donationserrors.ErrBookingLocked
	}
	delete(r.s.bookings, id)
	return nil
}

func (r memoryBookings) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return mongotx.PassThroughTransactionManager{}.ExecuteTransaction(ctx, fn)
}

type memoryUnits struct{ s *MemoryStore }

func (r memoryUnits) FindByDonorIDs(ctx context.Context, donorIDs []string) ([]*model.Unit, error) {
	want := make(map[string]bool, len(donorIDs))
	for _, id := range donorIDs {
		want[id] = true
	}
	return r.collect(func(u *model.Unit) bool { return want[u.DonorID] }), nil
}

func (r memoryUnits) FindByIDs(ctx context.Context, ids []string) ([]*model.Unit, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.collect(func(u *model.Unit) bool { return want[u.ID] }), nil
}

func (r memoryUnits) collect(keep func(u *model.Unit) bool) []*model.Unit {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.Unit
	for _, u := range r.s.units {
		if keep(u) {
			out = append(out, cloneUnit(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memoryUnits) FindByID(ctx context.Context, id string) (*model.Unit, error) {
	if u := r.s.Unit(id); u != nil {
		return u, nil
	}
	return nil, donationserrors.ErrUnitNotFound
}

func (r memoryUnits) Create(ctx context.Context, unit *model.Unit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.units {
		if u.SerialNumber == unit.SerialNumber {
			return donationserrors.ErrDuplicateSerial
		}
	}

	now := time.Now().UTC()
	unit.CreatedAt = now
	unit.UpdatedAt = now
	if unit.ID == "" {
		unit.ID = primitive.NewObjectID().Hex()
	}
	r.s.units[unit.ID] = cloneUnit(unit)
	return nil
}

func (r memoryUnits) MarkUsed(ctx context.Context, id string, hospitalID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.units[id]
	if !ok {
		return donationserrors.ErrUnitNotFound
	}
	if u.StorageStatus != model.StorageStored && u.StorageStatus != "" {
		return donationserrors.ErrUnitNotStored
	}
	used := at.UTC()
	u.StorageStatus = model.StorageUsed
	u.UsedAt = &used
	u.UsedHospitalID = hospitalID
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r memoryUnits) Update(ctx context.Context, id string, update model.UnitUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.units[id]
	if !ok {
		return donationserrors.ErrUnitNotFound
	}
	if update.SerialNumber != nil {
		for otherID, other := range r.s.units {
			if otherID != id && other.SerialNumber == *update.SerialNumber {
				return donationserrors.ErrDuplicateSerial
			}
		}
		u.SerialNumber = *update.SerialNumber
	}
	if update.BloodType != nil {
		u.BloodType = *update.BloodType
	}
	if update.AmountMl != nil {
		u.AmountMl = *update.AmountMl
	}
	if update.ExpiryDate != nil {
		t := update.ExpiryDate.UTC()
		u.ExpiryDate = &t
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

type memoryEvents struct{ s *MemoryStore }

func (r memoryEvents) FindByIDs(ctx context.Context, ids []string) ([]*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.Event
	for _, id := range ids {
		if e, ok := r.s.events[id]; ok {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}
