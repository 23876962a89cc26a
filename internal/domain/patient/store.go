package patient

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Gateway is the persistence collaborator. Load returns the current full
// record set and fails open to an empty set when no prior state exists or
// the stored state is unreadable. Save replaces the prior state wholesale
// and must be all-or-nothing from the caller's perspective.
type Gateway interface {
	Load(ctx context.Context) (RecordSet, error)
	Save(ctx context.Context, set RecordSet) error
}

// Store orchestrates CRUD over the record set. Every operation is a
// self-contained load, compute, save unit against the gateway; no state is
// cached between calls. A store-level mutex serializes operations so the
// load-modify-save sequence of one call never interleaves with another on
// the same store. Races between separate processes sharing a backend
// remain possible (last save wins) and are an accepted limitation.
type Store struct {
	mu        sync.Mutex
	gateway   Gateway
	validator *Validator
	allocator *Allocator
	publisher Publisher
	logger    *zap.Logger
}

// NewStore creates a record store over the given gateway.
func NewStore(gw Gateway, v *Validator, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		gateway:   gw,
		validator: v,
		allocator: NewAllocator(),
		logger:    logger,
	}
}

// UsePublisher attaches a change-event publisher. Must be called before the
// store is shared.
func (s *Store) UsePublisher(p Publisher) {
	s.publisher = p
}

// List returns all records ordered by ID.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return toOrderedSlice(set), nil
}

// Get returns the record with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx)
	if err != nil {
		return Record{}, err
	}
	rec, ok := set[id]
	if !ok {
		return Record{}, &NotFoundError{ID: id}
	}
	return rec, nil
}

// Create validates the input, allocates an ID against the loaded snapshot,
// inserts, and persists. The returned record carries the new ID and the
// computed derived fields.
func (s *Store) Create(ctx context.Context, in CreateInput) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx)
	if err != nil {
		return Record{}, err
	}

	rec, err := s.validator.ValidateCreate(in)
	if err != nil {
		return Record{}, err
	}

	// Allocation and insert use the same snapshot, so the ID cannot
	// collide with anything present in it.
	rec.ID = s.allocator.Allocate(set)
	set[rec.ID] = rec

	if err := s.gateway.Save(ctx, set); err != nil {
		return Record{}, fmt.Errorf("save record set: %w", err)
	}

	s.logger.Info("patient record created", zap.String("id", rec.ID))
	s.publish(ctx, newChangeEvent(EventRecordCreated, rec.ID, &rec))
	return rec, nil
}

// Update overlays the patch onto the stored record, re-validates the
// candidate as a whole, and persists it under the unchanged ID.
func (s *Store) Update(ctx context.Context, id string, patch UpdatePatch) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx)
	if err != nil {
		return Record{}, err
	}
	existing, ok := set[id]
	if !ok {
		return Record{}, &NotFoundError{ID: id}
	}

	updated, err := s.validator.ValidateUpdate(existing, patch)
	if err != nil {
		return Record{}, err
	}
	updated.ID = id
	set[id] = updated

	if err := s.gateway.Save(ctx, set); err != nil {
		return Record{}, fmt.Errorf("save record set: %w", err)
	}

	s.logger.Info("patient record updated", zap.String("id", id))
	s.publish(ctx, newChangeEvent(EventRecordUpdated, id, &updated))
	return updated, nil
}

// Delete removes the record with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := set[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(set, id)

	if err := s.gateway.Save(ctx, set); err != nil {
		return fmt.Errorf("save record set: %w", err)
	}

	s.logger.Info("patient record deleted", zap.String("id", id))
	s.publish(ctx, newChangeEvent(EventRecordDeleted, id, nil))
	return nil
}

// Sorted returns all records ordered by the given field and direction.
func (s *Store) Sorted(ctx context.Context, field, direction string) ([]Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Sort(records, field, direction)
}

// load fetches the current set and re-derives BMI and Verdict on every
// record, so stale derived values in the backing state can never surface.
func (s *Store) load(ctx context.Context) (RecordSet, error) {
	set, err := s.gateway.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load record set: %w", err)
	}
	if set == nil {
		set = RecordSet{}
	}
	for id, rec := range set {
		rec.ID = id
		set[id] = rec.withDerived()
	}
	return set, nil
}

func (s *Store) publish(ctx context.Context, event ChangeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, event); err != nil {
		s.logger.Warn("change event publish failed",
			zap.String("event_id", event.EventID),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}

func toOrderedSlice(set RecordSet) []Record {
	out := make([]Record, 0, len(set))
	for _, rec := range set {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
