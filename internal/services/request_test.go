package services

import (
	"context"
	"testing"
	"time"

	"cityevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestFixture struct {
	requestRepo *fakeRequestRepo
	eventRepo   *fakeEventRepo
	userRepo    *fakeUserRepo
	tx          *fakeTransactor
	email       *fakeEmailService
	svc         domain.RequestService
}

func newRequestFixture() *requestFixture {
	f := &requestFixture{
		requestRepo: newFakeRequestRepo(),
		eventRepo:   newFakeEventRepo(),
		userRepo:    newFakeUserRepo(),
		tx:          &fakeTransactor{},
		email:       &fakeEmailService{},
	}
	f.svc = NewRequestService(f.requestRepo, f.eventRepo, f.userRepo, f.tx, f.email, testLogger(), 5*time.Second)
	return f
}

// publishedEvent seeds a published event owned by a fresh user and returns both.
func (f *requestFixture) publishedEvent(t *testing.T, limit int, moderation bool) (*domain.Event, *domain.User) {
	t.Helper()
	owner := f.userRepo.add("Owner", "owner-"+time.Now().Format("150405.000000")+"@example.com")
	event := &domain.Event{
		Title:             "Street food fair",
		InitiatorID:       owner.ID,
		EventDate:         time.Now().Add(72 * time.Hour),
		ParticipantLimit:  limit,
		RequestModeration: moderation,
		State:             domain.EventStatePublished,
		CreatedOn:         time.Now(),
	}
	require.NoError(t, f.eventRepo.Create(context.Background(), event))
	return event, owner
}

func TestRequestService_AddRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("moderated event leaves request pending", func(t *testing.T) {
		f := newRequestFixture()
		event, _ := f.publishedEvent(t, 10, true)
		requester := f.userRepo.add("Ann", "ann@example.com")

		req, err := f.svc.AddRequest(ctx, requester.ID, event.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusPending, req.Status)
		assert.Zero(t, event.ConfirmedRequests)
		assert.Empty(t, f.email.sent)
		assert.Equal(t, 1, f.tx.calls)
	})

	t.Run("no moderation confirms immediately", func(t *testing.T) {
		f := newRequestFixture()
		event, _ := f.publishedEvent(t, 10, false)
		requester := f.userRepo.add("Ann", "ann@example.com")

		req, err := f.svc.AddRequest(ctx, requester.ID, event.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusConfirmed, req.Status)
		assert.Equal(t, 1, event.ConfirmedRequests)
		require.Len(t, f.email.sent, 1)
		assert.Equal(t, "ann@example.com", f.email.sent[0].Email)
	})

	t.Run("zero limit confirms even under moderation", func(t *testing.T) {
		f := newRequestFixture()
		event, _ := f.publishedEvent(t, 0, true)
		requester := f.userRepo.add("Ann", "ann@example.com")

		req, err := f.svc.AddRequest(ctx, requester.ID, event.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusConfirmed, req.Status)
	})

	t.Run("duplicate request conflicts", func(t *testing.T) {
		f := newRequestFixture()
		event, _ := f.publishedEvent(t, 10, true)
		requester := f.userRepo.add("Ann", "ann@example.com")

		_, err := f.svc.AddRequest(ctx, requester.ID, event.ID)
		require.NoError(t, err)
		_, err = f.svc.AddRequest(ctx, requester.ID, event.ID)
		assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("initiator cannot join their own event", func(t *testing.T) {
		f := newRequestFixture()
		event, owner := f.publishedEvent(t, 10, true)

		_, err := f.svc.AddRequest(ctx, owner.ID, event.ID)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("unpublished event conflicts", func(t *testing.T) {
		f := newRequestFixture()
		event, _ := f.publishedEvent(t, 10, true)
		event.State = domain.EventStatePending
		requester := f.userRepo.add("Ann", "ann@example.com")

		_, err := f.svc.AddRequest(ctx, requester.ID, event.ID)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("full event rejects with limit reached", func(t *testing.T) {
		f := newRequestFixture()
		event, _ := f.publishedEvent(t, 2, true)
		event.ConfirmedRequests = 2
		requester := f.userRepo.add("Ann", "ann@example.com")

		_, err := f.svc.AddRequest(ctx, requester.ID, event.ID)
		assert.ErrorIs(t, err, domain.ErrLimitReached)
		assert.Equal(t, 2, event.ConfirmedRequests)
	})

	t.Run("unknown user not found", func(t *testing.T) {
		f := newRequestFixture()
		event, _ := f.publishedEvent(t, 10, true)

		_, err := f.svc.AddRequest(ctx, 404, event.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown event not found", func(t *testing.T) {
		f := newRequestFixture()
		requester := f.userRepo.add("Ann", "ann@example.com")

		_, err := f.svc.AddRequest(ctx, requester.ID, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRequestService_CancelRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("canceling a confirmed request releases the seat", func(t *testing.T) {
		f := newRequestFixture()
		event, _ := f.publishedEvent(t, 10, false)
		requester := f.userRepo.add("Ann", "ann@example.com")

		req, err := f.svc.AddRequest(ctx, requester.ID, event.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RequestStatusConfirmed, req.Status)
		require.Equal(t, 1, event.ConfirmedRequests)

		got, err := f.svc.CancelRequest(ctx, requester.ID, req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusCanceled, got.Status)
		assert.Zero(t, event.ConfirmedRequests)
	})

	t.Run("canceling a pending request leaves the counter alone", func(t *testing.T) {
		f := newRequestFixture()
		event, _ := f.publishedEvent(t, 10, true)
		requester := f.userRepo.add("Ann", "ann@example.com")

		req, err := f.svc.AddRequest(ctx, requester.ID, event.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RequestStatusPending, req.Status)

		got, err := f.svc.CancelRequest(ctx, requester.ID, req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusCanceled, got.Status)
		assert.Zero(t, event.ConfirmedRequests)
	})

	t.Run("someone else's request reads as missing", func(t *testing.T) {
		f := newRequestFixture()
		event, _ := f.publishedEvent(t, 10, true)
		requester := f.userRepo.add("Ann", "ann@example.com")
		stranger := f.userRepo.add("Bob", "bob@example.com")

		req, err := f.svc.AddRequest(ctx, requester.ID, event.ID)
		require.NoError(t, err)

		_, err = f.svc.CancelRequest(ctx, stranger.ID, req.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, domain.RequestStatusPending, f.requestRepo.byID[req.ID].Status)
	})
}

func TestRequestService_GetEventRequests(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	event, owner := f.publishedEvent(t, 10, true)
	requester := f.userRepo.add("Ann", "ann@example.com")
	stranger := f.userRepo.add("Bob", "bob@example.com")

	_, err := f.svc.AddRequest(ctx, requester.ID, event.ID)
	require.NoError(t, err)

	reqs, err := f.svc.GetEventRequests(ctx, owner.ID, event.ID)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, requester.ID, reqs[0].RequesterID)

	_, err = f.svc.GetEventRequests(ctx, stranger.ID, event.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequestService_GetUserRequests(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	event, _ := f.publishedEvent(t, 10, true)
	requester := f.userRepo.add("Ann", "ann@example.com")

	_, err := f.svc.AddRequest(ctx, requester.ID, event.ID)
	require.NoError(t, err)

	reqs, err := f.svc.GetUserRequests(ctx, requester.ID)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, event.ID, reqs[0].EventID)

	_, err = f.svc.GetUserRequests(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequestService_UpdateRequestStatus(t *testing.T) {
	ctx := context.Background()

	// seed creates n pending requests and returns their ids.
	seed := func(t *testing.T, f *requestFixture, event *domain.Event, n int) []int64 {
		t.Helper()
		ids := make([]int64, 0, n)
		for i := 0; i < n; i++ {
			requester := f.userRepo.add("Guest", time.Now().Format("150405.000000")+"-"+string(rune('a'+i))+"@example.com")
			req, err := f.svc.AddRequest(ctx, requester.ID, event.ID)
			require.NoError(t, err)
			require.Equal(t, domain.RequestStatusPending, req.Status)
			ids = append(ids, req.ID)
		}
		return ids
	}

	t.Run("confirm within capacity", func(t *testing.T) {
		f := newRequestFixture()
		event, owner := f.publishedEvent(t, 5, true)
		ids := seed(t, f, event, 3)

		result, err := f.svc.UpdateRequestStatus(ctx, owner.ID, event.ID, domain.StatusUpdate{
			RequestIDs: ids,
			Status:     domain.RequestStatusConfirmed,
		})
		require.NoError(t, err)
		assert.Len(t, result.Confirmed, 3)
		assert.Empty(t, result.Rejected)
		assert.Equal(t, 3, event.ConfirmedRequests)
		assert.Len(t, f.email.sent, 3)
	})

	t.Run("batch larger than remaining capacity rejects the overflow", func(t *testing.T) {
		f := newRequestFixture()
		event, owner := f.publishedEvent(t, 2, true)
		ids := seed(t, f, event, 5)

		result, err := f.svc.UpdateRequestStatus(ctx, owner.ID, event.ID, domain.StatusUpdate{
			RequestIDs: ids,
			Status:     domain.RequestStatusConfirmed,
		})
		require.NoError(t, err)
		assert.Len(t, result.Confirmed, 2)
		assert.Len(t, result.Rejected, 3)
		assert.Equal(t, 2, event.ConfirmedRequests)

		// Nothing stays pending once the limit is reached.
		all, err := f.requestRepo.ListByEvent(ctx, event.ID)
		require.NoError(t, err)
		for _, req := range all {
			assert.NotEqual(t, domain.RequestStatusPending, req.Status)
		}
	})

	t.Run("filling the limit cascades rejection to unnamed pending requests", func(t *testing.T) {
		f := newRequestFixture()
		event, owner := f.publishedEvent(t, 2, true)
		ids := seed(t, f, event, 4)

		result, err := f.svc.UpdateRequestStatus(ctx, owner.ID, event.ID, domain.StatusUpdate{
			RequestIDs: ids[:2],
			Status:     domain.RequestStatusConfirmed,
		})
		require.NoError(t, err)
		assert.Len(t, result.Confirmed, 2)
		assert.Len(t, result.Rejected, 2)
		assert.Equal(t, domain.RequestStatusRejected, f.requestRepo.byID[ids[2]].Status)
		assert.Equal(t, domain.RequestStatusRejected, f.requestRepo.byID[ids[3]].Status)
	})

	t.Run("reject batch", func(t *testing.T) {
		f := newRequestFixture()
		event, owner := f.publishedEvent(t, 5, true)
		ids := seed(t, f, event, 2)

		result, err := f.svc.UpdateRequestStatus(ctx, owner.ID, event.ID, domain.StatusUpdate{
			RequestIDs: ids,
			Status:     domain.RequestStatusRejected,
		})
		require.NoError(t, err)
		assert.Empty(t, result.Confirmed)
		assert.Len(t, result.Rejected, 2)
		assert.Zero(t, event.ConfirmedRequests)
		assert.Empty(t, f.email.sent)
	})

	t.Run("non-pending request in the batch aborts", func(t *testing.T) {
		f := newRequestFixture()
		event, owner := f.publishedEvent(t, 5, true)
		ids := seed(t, f, event, 2)
		f.requestRepo.byID[ids[0]].Status = domain.RequestStatusCanceled

		_, err := f.svc.UpdateRequestStatus(ctx, owner.ID, event.ID, domain.StatusUpdate{
			RequestIDs: ids,
			Status:     domain.RequestStatusConfirmed,
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("confirming on an already full event conflicts", func(t *testing.T) {
		f := newRequestFixture()
		event, owner := f.publishedEvent(t, 2, true)
		ids := seed(t, f, event, 1)
		event.ConfirmedRequests = 2

		_, err := f.svc.UpdateRequestStatus(ctx, owner.ID, event.ID, domain.StatusUpdate{
			RequestIDs: ids,
			Status:     domain.RequestStatusConfirmed,
		})
		assert.ErrorIs(t, err, domain.ErrLimitReached)
	})

	t.Run("status other than CONFIRMED or REJECTED fails validation", func(t *testing.T) {
		f := newRequestFixture()
		event, owner := f.publishedEvent(t, 5, true)
		ids := seed(t, f, event, 1)

		_, err := f.svc.UpdateRequestStatus(ctx, owner.ID, event.ID, domain.StatusUpdate{
			RequestIDs: ids,
			Status:     domain.RequestStatusCanceled,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("only the initiator can moderate", func(t *testing.T) {
		f := newRequestFixture()
		event, _ := f.publishedEvent(t, 5, true)
		ids := seed(t, f, event, 1)
		stranger := f.userRepo.add("Bob", "bob@example.com")

		_, err := f.svc.UpdateRequestStatus(ctx, stranger.ID, event.ID, domain.StatusUpdate{
			RequestIDs: ids,
			Status:     domain.RequestStatusConfirmed,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
