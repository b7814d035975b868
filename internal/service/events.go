package service

import (
	"context"
	"time"

	"github.com/neexbeast/flysen-catalog/internal/catalog"
	"github.com/neexbeast/flysen-catalog/internal/repository"
	"github.com/neexbeast/flysen-catalog/internal/storage"
)

// DefaultUpcomingDays is the look-ahead window of Upcoming when none is given.
const DefaultUpcomingDays = 90

type Events struct {
	repo *repository.Events
	now  func() time.Time
}

func NewEvents(repo *repository.Events) *Events {
	return &Events{repo: repo, now: time.Now}
}

// Create stores e with zeroed stats and SCHEDULED status.
func (s *Events) Create(ctx context.Context, e *catalog.Event) (*catalog.Event, error) {
	if e.Stats == nil {
		e.Stats = catalog.ZeroEventStats()
	}
	// New events always start scheduled; Update moves them on.
	e.Status = catalog.EventStatusScheduled
	if _, err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Events) Get(ctx context.Context, id string) (*catalog.Event, error) {
	e, ok := s.repo.GetByID(ctx, id)
	if !ok {
		return nil, notFound("event", id)
	}
	return e, nil
}

func (s *Events) List(ctx context.Context, limit int, cursor string) []*catalog.Event {
	return s.repo.List(ctx, limit, cursor)
}

func (s *Events) Page(ctx context.Context, req repository.PageRequest) repository.PageResult[*catalog.Event] {
	return s.repo.Page(ctx, req)
}

func (s *Events) ByDestination(ctx context.Context, destinationID string) []*catalog.Event {
	return s.repo.ListByField(ctx, "destinationId", destinationID)
}

// Upcoming returns events dated within the next days days, soonest first.
func (s *Events) Upcoming(ctx context.Context, days, limit int) []*catalog.Event {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	from := catalog.NewTimestamp(s.now())
	to := catalog.NewTimestamp(from.AddDate(0, 0, days))

	return s.repo.ListSorted(ctx,
		[]storage.Filter{storage.Gte("date", from), storage.Lte("date", to)},
		byDate, limit)
}

// Featured returns featured events, soonest first.
func (s *Events) Featured(ctx context.Context, limit int) []*catalog.Event {
	return s.repo.ListSorted(ctx, []storage.Filter{storage.Eq("featured", true)}, byDate, limit)
}

func (s *Events) ByType(ctx context.Context, t catalog.EventType) []*catalog.Event {
	return s.repo.ListSorted(ctx, []storage.Filter{storage.Eq("type", t)}, byDate, 0)
}

func (s *Events) Update(ctx context.Context, id string, e *catalog.Event) (*catalog.Event, error) {
	if err := s.repo.Update(ctx, id, e); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Events) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// byDate orders undated events last.
func byDate(a, b *catalog.Event) bool {
	switch {
	case a.Date.IsZero():
		return false
	case b.Date.IsZero():
		return true
	default:
		return a.Date.Before(b.Date.Time)
	}
}
