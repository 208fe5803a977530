package services

import (
	"context"
	"log/slog"
	"time"

	"cityevents/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[int64]*domain.Event
	nextID    int64
	createErr error
	updateErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[int64]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = f.nextID
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Event, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeEventRepo) GetByIDAndInitiator(ctx context.Context, eventID, initiatorID int64) (*domain.Event, error) {
	e, ok := f.byID[eventID]
	if !ok || e.InitiatorID != initiatorID {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (f *fakeEventRepo) ListByInitiator(ctx context.Context, initiatorID int64, page domain.Page) ([]*domain.Event, error) {
	out := []*domain.Event{}
	for id := int64(1); id < f.nextID; id++ {
		if e, ok := f.byID[id]; ok && e.InitiatorID == initiatorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) UpdateConfirmedRequests(ctx context.Context, id int64, confirmed int) error {
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.ConfirmedRequests = confirmed
	return nil
}

func (f *fakeEventRepo) UpdateViews(ctx context.Context, id int64, views int64) error {
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Views = views
	return nil
}

func (f *fakeEventRepo) SearchPublic(ctx context.Context, filter domain.PublicSearchFilter) ([]*domain.Event, error) {
	out := []*domain.Event{}
	for id := int64(1); id < f.nextID; id++ {
		e, ok := f.byID[id]
		if !ok || e.State != domain.EventStatePublished {
			continue
		}
		if filter.Paid != nil && e.Paid != *filter.Paid {
			continue
		}
		if filter.RangeStart != nil && e.EventDate.Before(*filter.RangeStart) {
			continue
		}
		if filter.RangeEnd != nil && e.EventDate.After(*filter.RangeEnd) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventRepo) SearchAdmin(ctx context.Context, filter domain.AdminSearchFilter) ([]*domain.Event, error) {
	out := []*domain.Event{}
	for id := int64(1); id < f.nextID; id++ {
		e, ok := f.byID[id]
		if !ok {
			continue
		}
		if len(filter.States) > 0 {
			match := false
			for _, s := range filter.States {
				if e.State == s {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventRepo) ExistsByCategory(ctx context.Context, categoryID int64) (bool, error) {
	for _, e := range f.byID {
		if e.CategoryID == categoryID {
			return true, nil
		}
	}
	return false, nil
}

// fakeRequestRepo is an in-memory RequestRepository for tests.
type fakeRequestRepo struct {
	byID      map[int64]*domain.ParticipationRequest
	nextID    int64
	createErr error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		byID:   make(map[int64]*domain.ParticipationRequest),
		nextID: 1,
	}
}

func (f *fakeRequestRepo) Create(ctx context.Context, r *domain.ParticipationRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	r.ID = f.nextID
	f.nextID++
	f.byID[r.ID] = r
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id int64) (*domain.ParticipationRequest, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRequestRepo) ExistsByEventAndRequester(ctx context.Context, eventID, requesterID int64) (bool, error) {
	for _, r := range f.byID {
		if r.EventID == eventID && r.RequesterID == requesterID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestRepo) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	out := []*domain.ParticipationRequest{}
	for id := int64(1); id < f.nextID; id++ {
		if r, ok := f.byID[id]; ok && r.RequesterID == requesterID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	out := []*domain.ParticipationRequest{}
	for id := int64(1); id < f.nextID; id++ {
		if r, ok := f.byID[id]; ok && r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListByIDs(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	out := []*domain.ParticipationRequest{}
	for _, id := range ids {
		if r, ok := f.byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	r, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = status
	return nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID   map[int64]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:   make(map[int64]*domain.User),
		nextID: 1,
	}
}

func (f *fakeUserRepo) add(name, email string) *domain.User {
	u := &domain.User{ID: f.nextID, Name: name, Email: email, CreatedAt: time.Now()}
	f.nextID++
	f.byID[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = f.nextID
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, ids []int64, page domain.Page) ([]*domain.User, error) {
	out := []*domain.User{}
	for id := int64(1); id < f.nextID; id++ {
		u, ok := f.byID[id]
		if !ok {
			continue
		}
		if len(ids) > 0 {
			match := false
			for _, want := range ids {
				if id == want {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeCategoryRepo is an in-memory CategoryRepository for tests.
type fakeCategoryRepo struct {
	byID   map[int64]*domain.Category
	nextID int64
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		byID:   make(map[int64]*domain.Category),
		nextID: 1,
	}
}

func (f *fakeCategoryRepo) add(name string) *domain.Category {
	c := &domain.Category{ID: f.nextID, Name: name}
	f.nextID++
	f.byID[c.ID] = c
	return c
}

func (f *fakeCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	for _, existing := range f.byID {
		if existing.Name == c.Name {
			return domain.ErrDuplicateCategoryName
		}
	}
	c.ID = f.nextID
	f.nextID++
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryRepo) List(ctx context.Context, page domain.Page) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for id := int64(1); id < f.nextID; id++ {
		if c, ok := f.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	if _, ok := f.byID[c.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeStatsClient records hits and serves canned view counts.
type fakeStatsClient struct {
	hits     []domain.EndpointHit
	views    map[string]int64
	hitErr   error
	queryErr error
}

func newFakeStatsClient() *fakeStatsClient {
	return &fakeStatsClient{views: map[string]int64{}}
}

func (f *fakeStatsClient) RecordHit(ctx context.Context, hit domain.EndpointHit) error {
	if f.hitErr != nil {
		return f.hitErr
	}
	f.hits = append(f.hits, hit)
	return nil
}

func (f *fakeStatsClient) QueryViews(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	out := map[string]int64{}
	for _, uri := range uris {
		if v, ok := f.views[uri]; ok {
			out[uri] = v
		}
	}
	return out, nil
}

// fakeTransactor runs fn directly; there is no real transaction in tests.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// fakeEmailService records sent confirmations.
type fakeEmailService struct {
	sent []*domain.RequestConfirmedEmailData
	err  error
}

func (f *fakeEmailService) SendRequestConfirmed(ctx context.Context, data *domain.RequestConfirmedEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
