package businessflow

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/amirphl/dynamic-pricing/models"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/amirphl/dynamic-pricing/repository"
	"github.com/google/uuid"
)

var errFakeNotImplemented = errors.New("not implemented by fake")

// fakeClientRepo is an in-memory ClientProfileRepository
type fakeClientRepo struct {
	mu      sync.Mutex
	clients []*models.ClientProfile
}

func (r *fakeClientRepo) ByID(ctx context.Context, id uint) (*models.ClientProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) ByUUID(ctx context.Context, id string) (*models.ClientProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.UUID.String() == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) ByFilter(ctx context.Context, filter models.ClientProfileFilter, orderBy string, limit, offset int) ([]*models.ClientProfile, error) {
	return nil, errFakeNotImplemented
}

func (r *fakeClientRepo) Save(ctx context.Context, c *models.ClientProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uint(len(r.clients) + 1)
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	cp := *c
	r.clients = append(r.clients, &cp)
	return nil
}

func (r *fakeClientRepo) SaveBatch(ctx context.Context, cs []*models.ClientProfile) error {
	for _, c := range cs {
		if err := r.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeClientRepo) Count(ctx context.Context, filter models.ClientProfileFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.clients)), nil
}

func (r *fakeClientRepo) Exists(ctx context.Context, filter models.ClientProfileFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

// fakeQuoteRepo is an in-memory PriceQuoteRepository following the same status
// guards as the SQL implementation
type fakeQuoteRepo struct {
	mu      sync.Mutex
	quotes  []*models.PriceQuote
	saveErr error

	summary    *models.QuoteSummary
	breakdown  []models.SegmentBreakdown
	points     []pricing.PerformancePoint
	lastFrom   time.Time
	lastTo     time.Time
	lastModel  string
	updateMiss bool
}

func (r *fakeQuoteRepo) find(id uint) *models.PriceQuote {
	for _, q := range r.quotes {
		if q.ID == id {
			return q
		}
	}
	return nil
}

func (r *fakeQuoteRepo) ByID(ctx context.Context, id uint) (*models.PriceQuote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q := r.find(id); q != nil {
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeQuoteRepo) ByUUID(ctx context.Context, id string) (*models.PriceQuote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		if q.UUID.String() == id {
			cp := *q
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeQuoteRepo) ByUUIDForUpdate(ctx context.Context, id string) (*models.PriceQuote, error) {
	return r.ByUUID(ctx, id)
}

func (r *fakeQuoteRepo) ByFilter(ctx context.Context, filter models.PriceQuoteFilter, orderBy string, limit, offset int) ([]*models.PriceQuote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PriceQuote
	for i := len(r.quotes) - 1; i >= 0; i-- {
		q := r.quotes[i]
		if filter.ClientUUID != nil && q.ClientUUID != *filter.ClientUUID {
			continue
		}
		if filter.Status != nil && q.Status != *filter.Status {
			continue
		}
		if filter.CreatedAfter != nil && q.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		if filter.CreatedBefore != nil && !q.CreatedAt.Before(*filter.CreatedBefore) {
			continue
		}
		cp := *q
		out = append(out, &cp)
	}
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeQuoteRepo) Save(ctx context.Context, q *models.PriceQuote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	q.ID = uint(len(r.quotes) + 1)
	if q.UUID == uuid.Nil {
		q.UUID = uuid.New()
	}
	cp := *q
	r.quotes = append(r.quotes, &cp)
	return nil
}

func (r *fakeQuoteRepo) SaveBatch(ctx context.Context, qs []*models.PriceQuote) error {
	for _, q := range qs {
		if err := r.Save(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeQuoteRepo) Count(ctx context.Context, filter models.PriceQuoteFilter) (int64, error) {
	all, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(all)), err
}

func (r *fakeQuoteRepo) Exists(ctx context.Context, filter models.PriceQuoteFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeQuoteRepo) UpdateStatus(ctx context.Context, id uint, to models.QuoteStatus, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateMiss {
		return false, nil
	}
	q := r.find(id)
	if q == nil || !q.Status.CanTransitionTo(to) {
		return false, nil
	}
	if to == models.QuoteStatusExpired && !q.ValidUntil.Before(now) {
		return false, nil
	}
	q.Status = to
	q.UpdatedAt = &now
	return true, nil
}

func (r *fakeQuoteRepo) ExpireDue(ctx context.Context, now time.Time) ([]repository.ExpiredQuote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.ExpiredQuote
	for _, q := range r.quotes {
		if q.IsDue(now) {
			out = append(out, repository.ExpiredQuote{ID: q.ID, UUID: q.UUID, FromStatus: q.Status})
			q.Status = models.QuoteStatusExpired
			q.UpdatedAt = &now
		}
	}
	return out, nil
}

func (r *fakeQuoteRepo) ListByCreatedRange(ctx context.Context, from, to time.Time) ([]*models.PriceQuote, error) {
	out, err := r.ByFilter(ctx, models.PriceQuoteFilter{CreatedAfter: &from, CreatedBefore: &to}, "", 0, 0)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *fakeQuoteRepo) Summary(ctx context.Context, from, to time.Time) (*models.QuoteSummary, error) {
	r.lastFrom, r.lastTo = from, to
	if r.summary == nil {
		return &models.QuoteSummary{}, nil
	}
	return r.summary, nil
}

func (r *fakeQuoteRepo) SegmentBreakdown(ctx context.Context, from, to time.Time) ([]models.SegmentBreakdown, error) {
	return r.breakdown, nil
}

func (r *fakeQuoteRepo) PerformancePoints(ctx context.Context, modelName string, from, to time.Time) ([]pricing.PerformancePoint, error) {
	r.lastModel, r.lastFrom, r.lastTo = modelName, from, to
	return r.points, nil
}

// fakeEventRepo is an in-memory QuoteStatusEventRepository
type fakeEventRepo struct {
	mu     sync.Mutex
	events []*models.QuoteStatusEvent
}

func (r *fakeEventRepo) ByID(ctx context.Context, id uint) (*models.QuoteStatusEvent, error) {
	return nil, errFakeNotImplemented
}

func (r *fakeEventRepo) ByFilter(ctx context.Context, filter models.QuoteStatusEventFilter, orderBy string, limit, offset int) ([]*models.QuoteStatusEvent, error) {
	return nil, errFakeNotImplemented
}

func (r *fakeEventRepo) Save(ctx context.Context, e *models.QuoteStatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uint(len(r.events) + 1)
	cp := *e
	r.events = append(r.events, &cp)
	return nil
}

func (r *fakeEventRepo) SaveBatch(ctx context.Context, es []*models.QuoteStatusEvent) error {
	for _, e := range es {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeEventRepo) Count(ctx context.Context, filter models.QuoteStatusEventFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.events)), nil
}

func (r *fakeEventRepo) Exists(ctx context.Context, filter models.QuoteStatusEventFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeEventRepo) ListByQuoteID(ctx context.Context, quoteID uint) ([]*models.QuoteStatusEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.QuoteStatusEvent
	for _, e := range r.events {
		if e.QuoteID == quoteID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeAdminRepo is an in-memory AdminRepository
type fakeAdminRepo struct {
	mu     sync.Mutex
	admins []*models.Admin
}

func (r *fakeAdminRepo) ByID(ctx context.Context, id uint) (*models.Admin, error) {
	return nil, errFakeNotImplemented
}

func (r *fakeAdminRepo) ByUsername(ctx context.Context, username string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAdminRepo) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.ID == id {
			a.LastLoginAt = &at
		}
	}
	return nil
}

func (r *fakeAdminRepo) ByFilter(ctx context.Context, filter models.AdminFilter, orderBy string, limit, offset int) ([]*models.Admin, error) {
	return nil, errFakeNotImplemented
}

func (r *fakeAdminRepo) Save(ctx context.Context, a *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uint(len(r.admins) + 1)
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	cp := *a
	r.admins = append(r.admins, &cp)
	return nil
}

func (r *fakeAdminRepo) SaveBatch(ctx context.Context, as []*models.Admin) error {
	for _, a := range as {
		if err := r.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeAdminRepo) Count(ctx context.Context, filter models.AdminFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.admins)), nil
}

func (r *fakeAdminRepo) Exists(ctx context.Context, filter models.AdminFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}
