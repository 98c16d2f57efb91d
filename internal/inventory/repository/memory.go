package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	inventoryerrors "bloodbank/internal/inventory/errors"
	mongotx "bloodbank/pkg/db/mongo"
	"bloodbank/pkg/model"
)

// MemoryHospitalRepository is an in-process HospitalRepository. A single
// mutex serializes stock updates the same way the conditional document
// update does in Mongo. Transactions run fn directly without rollback.
type MemoryHospitalRepository struct {
	mu        sync.Mutex
	hospitals map[string]*model.Hospital
}

func NewMemoryHospitalRepository(hospitals ...*model.Hospital) *MemoryHospitalRepository {
	r := &MemoryHospitalRepository{hospitals: make(map[string]*model.Hospital)}
	for _, h := range hospitals {
		r.hospitals[h.ID] = cloneHospital(h)
	}
	return r
}

func cloneHospital(h *model.Hospital) *model.Hospital {
	out := *h
	out.Stock = make(map[string]model.StockEntry, len(h.Stock))
	for bt, entry := range h.Stock {
		out.Stock[bt] = entry
	}
	return &out
}

func (r *MemoryHospitalRepository) FindAll(ctx context.Context) ([]*model.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Hospital, 0, len(r.hospitals))
	for _, h := range r.hospitals {
		out = append(out, cloneHospital(h))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryHospitalRepository) FindByID(ctx context.Context, id string) (*model.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.hospitals[id]
	if !ok {
		return nil, inventoryerrors.ErrNotFound
	}
	return cloneHospital(h), nil
}

func (r *MemoryHospitalRepository) Increment(ctx context.Context, hospitalID, bloodType string, n int, defaults model.Thresholds) (*model.StockEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.hospitals[hospitalID]
	if !ok {
		return nil, inventoryerrors.ErrNotFound
	}
	entry := h.Entry(bloodType, defaults)
	entry.Quantity += n
	entry.LastUpdated = time.Now().UTC()
	h.Stock[bloodType] = entry
	return &entry, nil
}

func (r *MemoryHospitalRepository) Decrement(ctx context.Context, hospitalID, bloodType string, n int) (*model.StockEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.hospitals[hospitalID]
	if !ok {
		return nil, inventoryerrors.ErrNotFound
	}
	entry := h.Entry(bloodType, model.DefaultThresholds)
	if entry.Quantity < n {
		return &entry, inventoryerrors.ErrInsufficientStock
	}
	entry.Quantity -= n
	entry.LastUpdated = time.Now().UTC()
	h.Stock[bloodType] = entry
	return &entry, nil
}

func (r *MemoryHospitalRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

// Quantity returns the current quantity, 0 for an absent entry or hospital.
func (r *MemoryHospitalRepository) Quantity(hospitalID, bloodType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.hospitals[hospitalID]; ok {
		return h.Stock[bloodType].Quantity
	}
	return 0
}
