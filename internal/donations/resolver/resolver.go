package resolver

import (
	"sort"
	"strings"

	"bloodbank/internal/donations/lifecycle"
	"bloodbank/pkg/model"
	"bloodbank/pkg/sanitizer"
)

// MinMatchScore is the lowest similarity accepted by the fuzzy name match.
const MinMatchScore = 0.5

type candidate struct {
	hospital *model.Hospital
	name     string
	tokens   []string
	location []string
}

// Resolver attributes bookings to tracked hospitals. It is built once per
// request from a snapshot of hospitals and events and holds no other state.
type Resolver struct {
	candidates []candidate
	byID       map[string]*model.Hospital
	events     map[string]*model.Event
}

func New(hospitals []*model.Hospital, events []*model.Event) *Resolver {
	r := &Resolver{
		byID:   make(map[string]*model.Hospital, len(hospitals)),
		events: make(map[string]*model.Event, len(events)),
	}
	for _, h := range hospitals {
		if h == nil || h.ID == "" {
			continue
		}
		r.byID[h.ID] = h
		r.candidates = append(r.candidates, candidate{
			hospital: h,
			name:     sanitizer.SanitizeNameOrAddress(h.Name),
			tokens:   sanitizer.Tokens(h.Name),
			location: sanitizer.Tokens(h.Location),
		})
	}
	sort.Slice(r.candidates, func(i, j int) bool {
		return r.candidates[i].hospital.ID < r.candidates[j].hospital.ID
	})
	for _, e := range events {
		if e != nil {
			r.events[e.ID] = e
		}
	}
	return r
}

// Tracked reports whether id names a known hospital.
func (r *Resolver) Tracked(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Resolve picks the hospital for b. An explicit hospital id or an event's
// assigned hospital is authoritative: if it is untracked the booking is
// unresolvable. Otherwise the name and location hints are matched against
// tracked hospitals, and as a last resort the lowest-id hospital is used.
func (r *Resolver) Resolve(b *model.Booking) (lifecycle.HospitalRef, bool) {
	if b.HospitalID != "" {
		return r.ref(b.HospitalID)
	}

	if b.FromEvent() {
		if e, ok := r.events[b.EventID]; ok && e.AssignedHospitalID != "" {
			return r.ref(e.AssignedHospitalID)
		}
	}

	if h := r.match(b.HospitalName, b.Location); h != nil {
		return lifecycle.HospitalRef{ID: h.ID, Name: h.Name}, true
	}

	if len(r.candidates) == 0 {
		return lifecycle.HospitalRef{}, false
	}
	h := r.candidates[0].hospital
	return lifecycle.HospitalRef{ID: h.ID, Name: h.Name}, true
}

func (r *Resolver) ref(id string) (lifecycle.HospitalRef, bool) {
	h, ok := r.byID[id]
	if !ok {
		return lifecycle.HospitalRef{}, false
	}
	return lifecycle.HospitalRef{ID: h.ID, Name: h.Name}, true
}

func (r *Resolver) match(name, location string) *model.Hospital {
	hintName := sanitizer.SanitizeNameOrAddress(name)
	nameTokens := sanitizer.Tokens(name)
	locationTokens := sanitizer.Tokens(location)
	if hintName == "" && len(locationTokens) == 0 {
		return nil
	}

	var best *model.Hospital
	bestScore := 0.0
	for _, c := range r.candidates {
		score := nameScore(hintName, nameTokens, c)
		if s := jaccard(locationTokens, c.location); s > score {
			score = s
		}
		if s := jaccard(locationTokens, c.tokens); s > score {
			score = s
		}
		// candidates are in id order, so ties keep the lowest id
		if score >= MinMatchScore && score > bestScore {
			best, bestScore = c.hospital, score
		}
	}
	return best
}

func nameScore(hint string, hintTokens []string, c candidate) float64 {
	if hint == "" || c.name == "" {
		return 0
	}
	if hint == c.name {
		return 1
	}
	if len(c.name) >= 4 && len(hint) >= 4 && (strings.Contains(hint, c.name) || strings.Contains(c.name, hint)) {
		return 0.9
	}
	return jaccard(hintTokens, c.tokens)
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	shared := 0
	union := len(set)
	for _, t := range b {
		if _, ok := set[t]; ok {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}
