package testutil

import (
	"time"

	"bloodbank/pkg/model"
)

type HospitalBuilder struct {
	h model.Hospital
}

func NewHospitalBuilder(id string) *HospitalBuilder {
	return &HospitalBuilder{
		h: model.Hospital{
			ID:        id,
			Name:      "Hospital " + id,
			Stock:     map[string]model.StockEntry{},
			CreatedAt: time.Now().UTC(),
		},
	}
}

func (b *HospitalBuilder) WithName(name string) *HospitalBuilder {
	b.h.Name = name
	return b
}

func (b *HospitalBuilder) WithStock(bloodType string, quantity int) *HospitalBuilder {
	b.h.Stock[bloodType] = model.StockEntry{
		Quantity:    quantity,
		Thresholds:  model.DefaultThresholds,
		LastUpdated: time.Now().UTC().Truncate(time.Millisecond),
	}
	return b
}

func (b *HospitalBuilder) Build() model.Hospital {
	return b.h
}
