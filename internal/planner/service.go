// Package planner owns the visit collection. It applies the scheduling
// rules to every change and persists each committed snapshot.
package planner

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/evcraddock/visit-planner/internal/cep"
	"github.com/evcraddock/visit-planner/internal/metrics"
	"github.com/evcraddock/visit-planner/internal/schedule"
	"github.com/evcraddock/visit-planner/internal/visit"
)

// Store persists the whole visit collection.
type Store interface {
	Load(ctx context.Context) ([]visit.Visit, error)
	Save(ctx context.Context, visits []visit.Visit) error
}

// AddressLookup resolves postal codes.
type AddressLookup interface {
	Lookup(ctx context.Context, code string) (*cep.Address, error)
}

// Options configures a Service. Zero values select defaults.
type Options struct {
	Rules schedule.Rules
	// SeedOnEmpty loads the sample visits when storage is empty or
	// cannot be read.
	SeedOnEmpty bool
	Now         func() time.Time
	Logger      zerolog.Logger
	Metrics     metrics.Recorder
	Lookup      AddressLookup
}

// Service provides visit planning business logic.
type Service struct {
	store   Store
	rules   schedule.Rules
	now     func() time.Time
	log     zerolog.Logger
	metrics metrics.Recorder
	lookup  AddressLookup

	mu     sync.Mutex
	visits []visit.Visit
}

// CloseResult describes a closed day.
type CloseResult struct {
	Date      string        `json:"date"`
	Relocated []visit.Visit `json:"relocated"`
}

// DayDetail is a day report with the day's visits.
type DayDetail struct {
	schedule.DayReport
	Items []visit.Visit `json:"items"`
}

// NewService creates a planner and loads the stored collection.
func NewService(ctx context.Context, store Store, opts Options) (*Service, error) {
	if store == nil {
		return nil, errors.New("planner: nil store")
	}
	if opts.Rules == (schedule.Rules{}) {
		opts.Rules = schedule.DefaultRules()
	}
	if err := opts.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NopRecorder{}
	}

	s := &Service{
		store:   store,
		rules:   opts.Rules,
		now:     opts.Now,
		log:     opts.Logger,
		metrics: opts.Metrics,
		lookup:  opts.Lookup,
	}
	s.load(ctx, opts.SeedOnEmpty)
	return s, nil
}

func (s *Service) load(ctx context.Context, seed bool) {
	visits, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("loading visits failed")
		visits = nil
	}
	if len(visits) > 0 || !seed {
		s.visits = visits
		s.log.Info().Int("visits", len(visits)).Msg("visits loaded")
		return
	}

	s.log.Info().Msg("no stored visits, loading sample data")
	s.commit(ctx, visit.DefaultVisits(s.now()))
}

// commit replaces the collection and persists it. Persistence failures
// are logged; the in-memory collection stays authoritative. Callers hold mu
// or own s exclusively.
func (s *Service) commit(ctx context.Context, next []visit.Visit) {
	s.visits = next
	if err := s.store.Save(ctx, next); err != nil {
		s.log.Error().Err(err).Int("visits", len(next)).Msg("saving visits failed")
	}
}

func (s *Service) indexOf(id string) int {
	return slices.IndexFunc(s.visits, func(v visit.Visit) bool { return v.ID == id })
}

// Rules returns the scheduling rules in effect.
func (s *Service) Rules() schedule.Rules {
	return s.rules
}

// List returns all visits, or only those on date when it is not empty.
func (s *Service) List(date string) ([]visit.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if date == "" {
		return slices.Clone(s.visits), nil
	}
	day, err := visit.ParseDate(date)
	if err != nil {
		return nil, invalid(err)
	}
	return schedule.VisitsOn(s.visits, day), nil
}

// Get returns the visit with id.
func (s *Service) Get(id string) (visit.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return visit.Visit{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.visits[i], nil
}

// Check runs the capacity check without changing anything. excludeID
// names a visit being edited, or is empty.
func (s *Service) Check(date string, formCount, productCount int, excludeID string) (schedule.Decision, error) {
	in := visit.Input{Date: date, FormCount: formCount, ProductCount: productCount}
	if err := in.Validate(); err != nil {
		return schedule.Decision{}, invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.CanAdd(s.visits, in.Date, in.FormCount, in.ProductCount, excludeID), nil
}

func (s *Service) ensureCapacity(v visit.Visit, excludeID string) error {
	d := s.rules.CanAdd(s.visits, v.Date, v.FormCount, v.ProductCount, excludeID)
	if d.Allowed {
		return nil
	}
	s.metrics.CapacityRejected()
	s.log.Debug().
		Str("date", v.Date).
		Int("required", d.RequiredMinutes).
		Int("available", d.AvailableMinutes).
		Msg("visit rejected")
	return &CapacityError{Date: v.Date, Decision: d}
}

// Add creates a pending visit if it fits on its day.
func (s *Service) Add(ctx context.Context, in visit.Input) (visit.Visit, error) {
	v, err := visit.New(in)
	if err != nil {
		return visit.Visit{}, invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureCapacity(v, ""); err != nil {
		return visit.Visit{}, err
	}

	next := append(slices.Clone(s.visits), v)
	s.commit(ctx, next)
	s.metrics.VisitOperation("add")
	s.log.Info().Str("id", v.ID).Str("date", v.Date).Msg("visit added")
	return v, nil
}

// Update replaces the editable fields of a visit. The visit's own
// previous size does not count against the day.
func (s *Service) Update(ctx context.Context, id string, in visit.Input) (visit.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return visit.Visit{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	edited, err := s.visits[i].Edit(in)
	if err != nil {
		return visit.Visit{}, invalid(err)
	}
	if err := s.ensureCapacity(edited, id); err != nil {
		return visit.Visit{}, err
	}

	next := slices.Clone(s.visits)
	next[i] = edited
	s.commit(ctx, next)
	s.metrics.VisitOperation("update")
	s.log.Info().Str("id", id).Str("date", edited.Date).Msg("visit updated")
	return edited, nil
}

// Delete removes a visit.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := slices.Delete(slices.Clone(s.visits), i, i+1)
	s.commit(ctx, next)
	s.metrics.VisitOperation("delete")
	s.log.Info().Str("id", id).Msg("visit deleted")
	return nil
}

// Complete marks a pending visit completed.
func (s *Service) Complete(ctx context.Context, id string) (visit.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return visit.Visit{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	done, err := visit.Complete(s.visits[i])
	if err != nil {
		return visit.Visit{}, err
	}

	next := slices.Clone(s.visits)
	next[i] = done
	s.commit(ctx, next)
	s.metrics.VisitOperation("complete")
	s.log.Info().Str("id", id).Msg("visit completed")
	return done, nil
}

// CloseDay moves the pending visits of date to the following days with
// room. Nothing changes when the day has no pending visits.
func (s *Service) CloseDay(ctx context.Context, date string) (CloseResult, error) {
	day, err := visit.ParseDate(date)
	if err != nil {
		return CloseResult{}, invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := CloseResult{Date: day, Relocated: []visit.Visit{}}
	if !schedule.HasPending(s.visits, day) {
		return result, nil
	}

	moving := make(map[string]bool)
	for _, v := range s.visits {
		if v.Day() == day && v.Status == visit.StatusPending {
			moving[v.ID] = true
		}
	}

	next, err := s.rules.CloseDayAndRelocate(s.visits, day)
	if err != nil {
		s.log.Warn().Err(err).Str("date", day).Msg("closing day failed")
		return CloseResult{}, err
	}
	for _, v := range next {
		if moving[v.ID] {
			result.Relocated = append(result.Relocated, v)
		}
	}

	s.commit(ctx, next)
	s.metrics.DayClosed(len(result.Relocated))
	s.log.Info().Str("date", day).Int("relocated", len(result.Relocated)).Msg("day closed")
	return result, nil
}

// Days returns a report for every day that has visits.
func (s *Service) Days() []schedule.DayReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.Reports(s.visits)
}

// Day returns the report and visits of one day. A day without visits
// yields an empty report.
func (s *Service) Day(date string) (DayDetail, error) {
	day, err := visit.ParseDate(date)
	if err != nil {
		return DayDetail{}, invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := schedule.VisitsOn(s.visits, day)
	if items == nil {
		items = []visit.Visit{}
	}
	return DayDetail{DayReport: s.rules.Report(s.visits, day), Items: items}, nil
}

// ReplaceAll swaps the whole collection, as on import. Visits keep their
// ids and statuses; days over capacity are accepted and logged.
func (s *Service) ReplaceAll(ctx context.Context, visits []visit.Visit) error {
	next := make([]visit.Visit, 0, len(visits))
	seen := make(map[string]bool, len(visits))
	for _, v := range visits {
		if err := v.Validate(); err != nil {
			return invalid(err)
		}
		if seen[v.ID] {
			return invalid(fmt.Errorf("duplicate visit id %s", v.ID))
		}
		seen[v.ID] = true
		v.Date = v.Day()
		next = append(next, v)
	}

	for _, rep := range s.rules.Reports(next) {
		if rep.AvailableMinutes < 0 {
			s.log.Warn().
				Str("date", rep.Date).
				Int("scheduled", rep.ScheduledMinutes).
				Msg("imported day is over capacity")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.commit(ctx, next)
	s.metrics.VisitOperation("import")
	s.log.Info().Int("visits", len(next)).Msg("visits replaced")
	return nil
}

// LookupAddress resolves a postal code to an address.
func (s *Service) LookupAddress(ctx context.Context, code string) (*cep.Address, error) {
	if s.lookup == nil {
		return nil, ErrLookupUnavailable
	}

	addr, err := s.lookup.Lookup(ctx, code)
	switch {
	case err == nil:
		s.metrics.AddressLookup("found")
	case errors.Is(err, cep.ErrNotFound):
		s.metrics.AddressLookup("not_found")
	case errors.Is(err, cep.ErrInvalid):
		s.metrics.AddressLookup("invalid")
	default:
		s.metrics.AddressLookup("error")
		s.log.Warn().Err(err).Str("code", code).Msg("address lookup failed")
	}
	if err != nil {
		return nil, fmt.Errorf("looking up address: %w", err)
	}
	return addr, nil
}
