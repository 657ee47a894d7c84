package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"tally/internal/amqp"
	"tally/internal/categories"
	"tally/internal/core"
	"tally/internal/impulse"
	"tally/internal/log"
	"tally/internal/store"
)

// SnapshotPublisher receives the collection after every commit.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, msg *amqp.SnapshotSavedMessage) error
}

// AddResult reports the outcome of AddExpense.
type AddResult struct {
	Committed bool             `json:"committed"`
	Expense   core.Expense     `json:"expense"`
	Decision  impulse.Decision `json:"decision"`
}

// ExpenseService owns the load-modify-save cycle of the collection.
type ExpenseService struct {
	mu        sync.Mutex
	store     store.Store
	registry  *categories.Registry
	publisher SnapshotPublisher
	logger    *log.Logger
	seed      []string
	version   atomic.Int64
}

type Option func(*ExpenseService)

// WithPublisher sends a snapshot message after each commit.
func WithPublisher(p SnapshotPublisher) Option {
	return func(s *ExpenseService) { s.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *ExpenseService) { s.logger = l.WithComponent(log.ComponentExpense) }
}

// WithSeedCategories registers extra category ids whenever the registry is
// (re)built, so they appear in listings before any expense uses them.
func WithSeedCategories(ids []string) Option {
	return func(s *ExpenseService) { s.seed = ids }
}

func NewExpenseService(st store.Store, reg *categories.Registry, opts ...Option) *ExpenseService {
	if reg == nil {
		reg = categories.New()
	}
	s := &ExpenseService{
		store:    st,
		registry: reg,
		logger:   log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seedRegistry()
	return s
}

func (s *ExpenseService) Registry() *categories.Registry {
	return s.registry
}

// Version increases on every commit and on Reset.
func (s *ExpenseService) Version() int64 {
	return s.version.Load()
}

// Load returns the normalized collection. It never fails: store errors and
// malformed data are logged and treated as an empty collection.
func (s *ExpenseService) Load(ctx context.Context) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *ExpenseService) load(ctx context.Context) []core.Expense {
	recs, err := s.store.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return []core.Expense{}
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load expenses, using empty collection",
			log.NewFields().WithOperation(log.OpLoad).WithError(err).ToSlice()...)
		return []core.Expense{}
	}
	exps := core.NormalizeAll(recs)
	s.registry.Discover(exps)
	return exps
}

// AddExpense normalizes e, applies the impulse policy and commits it.
// When the policy warns, c decides; a decline returns Committed=false with
// a nil error. Nothing is saved unless the result is committed.
//
// The lock is not held while c runs, since Confirm may wait on a person.
// After an approval the policy is evaluated again under the lock, and c is
// asked again if the month changed in the meantime.
func (s *ExpenseService) AddExpense(ctx context.Context, e core.Expense, c Confirmer) (AddResult, error) {
	e = core.Normalize(e.Record())
	if c == nil {
		c = Preapproved(false)
	}

	var approved *impulse.Decision
	for {
		res, done, err := s.commitUnlessWarned(ctx, e, approved)
		if done || err != nil {
			return res, err
		}

		ok, err := c.Confirm(ctx, res.Decision)
		if err != nil {
			return res, fmt.Errorf("confirm impulse purchase: %w", err)
		}
		if !ok {
			s.logger.InfoContext(ctx, "Impulse purchase declined",
				log.NewFields().WithExpense(e.Category, e.Amount, e.Impulse, e.Date).
					WithOperation(log.OpConfirm).ToSlice()...)
			return res, nil
		}
		approved = &res.Decision
	}
}

// commitUnlessWarned evaluates and commits e under the lock. It returns
// done=false without saving when the policy warns with a decision other
// than approved.
func (s *ExpenseService) commitUnlessWarned(ctx context.Context, e core.Expense, approved *impulse.Decision) (AddResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exps := s.load(ctx)
	decision := impulse.Evaluate(exps, e)
	res := AddResult{Expense: e, Decision: decision}
	if decision.Warn && (approved == nil || *approved != decision) {
		return res, false, nil
	}

	exps = append(exps, e)
	if err := s.store.Save(ctx, exps); err != nil {
		return res, true, fmt.Errorf("save expenses: %w", err)
	}
	s.registry.Resolve(e.Category)
	res.Committed = true

	version := s.version.Add(1)
	s.logger.InfoContext(ctx, "Expense committed",
		log.NewFields().WithExpense(e.Category, e.Amount, e.Impulse, e.Date).
			WithOperation(log.OpCreate).ToSlice()...)
	s.publish(ctx, version, exps)
	return res, true, nil
}

// Reset empties the collection and drops discovered categories.
func (s *ExpenseService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(ctx, []core.Expense{}); err != nil {
		return fmt.Errorf("reset expenses: %w", err)
	}
	s.registry.Reset()
	s.seedRegistry()

	version := s.version.Add(1)
	s.logger.InfoContext(ctx, "Expenses reset", log.FieldOperation, log.OpDelete)
	s.publish(ctx, version, nil)
	return nil
}

// Replace swaps in a whole collection, as received from a device sync.
func (s *ExpenseService) Replace(ctx context.Context, recs []core.RawRecord) ([]core.Expense, error) {
	exps := core.NormalizeAll(recs)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(ctx, exps); err != nil {
		return nil, fmt.Errorf("replace expenses: %w", err)
	}
	s.registry.Discover(exps)

	version := s.version.Add(1)
	s.logger.InfoContext(ctx, "Expenses replaced", log.FieldOperation, log.OpSync, log.FieldCount, len(exps))
	s.publish(ctx, version, exps)
	return exps, nil
}

func (s *ExpenseService) publish(ctx context.Context, version int64, exps []core.Expense) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewSnapshotSavedMessage(version, exps)
	if err := s.publisher.PublishSnapshot(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish snapshot",
			log.NewFields().WithOperation(log.OpSync).WithError(err).ToSlice()...)
	}
}

func (s *ExpenseService) seedRegistry() {
	for _, id := range s.seed {
		if categories.IsPreset(id) {
			continue
		}
		s.registry.Resolve(id)
	}
}
