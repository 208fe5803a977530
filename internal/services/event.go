package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"cityevents/internal/domain"
)

// Minimum lead between "now" and the event date for a given operation.
const (
	userEventLeadTime    = 2 * time.Hour
	adminPublishLeadTime = 1 * time.Hour
)

// viewsSince is the lower bound of every view-count query; hits are never
// recorded before the platform existed.
var viewsSince = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	categoryRepo   domain.CategoryRepository
	statsClient    domain.StatsClient
	appName        string
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	categoryRepo domain.CategoryRepository,
	statsClient domain.StatsClient,
	appName string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		categoryRepo:   categoryRepo,
		statsClient:    statsClient,
		appName:        appName,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) AddEvent(ctx context.Context, userID int64, draft domain.NewEventDraft) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if draft.EventDate.Before(time.Now().Add(userEventLeadTime)) {
		return nil, fmt.Errorf("%w: event date must be at least 2 hours from now", domain.ErrValidation)
	}
	if draft.ParticipantLimit < 0 {
		return nil, fmt.Errorf("%w: participant limit must not be negative", domain.ErrValidation)
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if _, err := s.categoryRepo.GetByID(ctx, draft.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	event := &domain.Event{
		Title:             draft.Title,
		Annotation:        draft.Annotation,
		Description:       draft.Description,
		CategoryID:        draft.CategoryID,
		InitiatorID:       userID,
		Location:          draft.Location,
		EventDate:         draft.EventDate,
		Paid:              draft.Paid,
		ParticipantLimit:  draft.ParticipantLimit,
		RequestModeration: draft.RequestModeration,
		State:             domain.EventStatePending,
		CreatedOn:         time.Now(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetUserEvents(ctx context.Context, userID int64, page domain.Page) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	events, err := s.eventRepo.ListByInitiator(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) GetUserEvent(ctx context.Context, userID, eventID int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Scoped lookup: an event owned by someone else is indistinguishable
	// from a missing one.
	event, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateUserEvent(ctx context.Context, userID, eventID int64, patch domain.UserEventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if event.State == domain.EventStatePublished {
		return nil, fmt.Errorf("%w: cannot update published event", domain.ErrConflict)
	}

	if patch.EventDate != nil && patch.EventDate.Before(time.Now().Add(userEventLeadTime)) {
		return nil, fmt.Errorf("%w: event date must be at least 2 hours from now", domain.ErrValidation)
	}

	if err := s.applyPatch(ctx, event, patch.EventPatch); err != nil {
		return nil, err
	}

	if patch.StateAction != nil {
		switch *patch.StateAction {
		case domain.StateActionSendToReview:
			event.State = domain.EventStatePending
		case domain.StateActionCancelReview:
			event.State = domain.EventStateCanceled
		default:
			return nil, fmt.Errorf("%w: unknown state action: %s", domain.ErrValidation, *patch.StateAction)
		}
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateEventByAdmin(ctx context.Context, eventID int64, patch domain.AdminEventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if err := s.applyPatch(ctx, event, patch.EventPatch); err != nil {
		return nil, err
	}

	if patch.StateAction != nil {
		switch *patch.StateAction {
		case domain.StateActionPublishEvent:
			if event.State != domain.EventStatePending {
				return nil, fmt.Errorf("%w: cannot publish the event because it's not in the right state: %s",
					domain.ErrConflict, event.State)
			}
			// Checked against the event date effective after the patch.
			if event.EventDate.Before(time.Now().Add(adminPublishLeadTime)) {
				return nil, fmt.Errorf("%w: event date must be at least 1 hour from publication time", domain.ErrConflict)
			}
			now := time.Now()
			event.State = domain.EventStatePublished
			event.PublishedOn = &now
		case domain.StateActionRejectEvent:
			if event.State == domain.EventStatePublished {
				return nil, fmt.Errorf("%w: cannot reject the event because it's already published", domain.ErrConflict)
			}
			event.State = domain.EventStateCanceled
		default:
			return nil, fmt.Errorf("%w: unknown state action: %s", domain.ErrValidation, *patch.StateAction)
		}
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// applyPatch merges the sparse patch into the event; nil fields keep the
// current value. A referenced category must exist.
func (s *eventService) applyPatch(ctx context.Context, event *domain.Event, patch domain.EventPatch) error {
	if patch.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *patch.CategoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get category: %w", err)
		}
		event.CategoryID = *patch.CategoryID
	}
	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Annotation != nil {
		event.Annotation = *patch.Annotation
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.EventDate != nil {
		event.EventDate = *patch.EventDate
	}
	if patch.Location != nil {
		event.Location = *patch.Location
	}
	if patch.Paid != nil {
		event.Paid = *patch.Paid
	}
	if patch.ParticipantLimit != nil {
		if *patch.ParticipantLimit < 0 {
			return fmt.Errorf("%w: participant limit must not be negative", domain.ErrValidation)
		}
		event.ParticipantLimit = *patch.ParticipantLimit
	}
	if patch.RequestModeration != nil {
		event.RequestModeration = *patch.RequestModeration
	}
	return nil
}

func (s *eventService) GetPublicEvents(ctx context.Context, filter domain.PublicSearchFilter, sortBy domain.EventSort, onlyAvailable bool, ip, uri string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Without an explicit window only upcoming events are listed.
	if filter.RangeStart == nil && filter.RangeEnd == nil {
		now := time.Now()
		filter.RangeStart = &now
	}
	if filter.RangeStart != nil && filter.RangeEnd != nil && filter.RangeStart.After(*filter.RangeEnd) {
		return nil, fmt.Errorf("%w: start date must be before end date", domain.ErrValidation)
	}

	s.recordHit(ctx, ip, uri)

	events, err := s.eventRepo.SearchPublic(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}

	if onlyAvailable {
		available := events[:0]
		for _, event := range events {
			if !event.IsFull() {
				available = append(available, event)
			}
		}
		events = available
	}

	views := s.queryViews(ctx, events)
	for _, event := range events {
		event.Views = views[event.ID]
	}

	switch sortBy {
	case domain.SortEventDate:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].EventDate.Before(events[j].EventDate)
		})
	case domain.SortViews:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Views > events[j].Views
		})
	}

	return events, nil
}

func (s *eventService) GetPublishedEvent(ctx context.Context, eventID int64, ip, uri string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.State != domain.EventStatePublished {
		return nil, domain.ErrNotFound
	}

	s.recordHit(ctx, ip, uri)

	views := s.queryViews(ctx, []*domain.Event{event})
	event.Views = views[event.ID]
	if err := s.eventRepo.UpdateViews(ctx, event.ID, event.Views); err != nil {
		return nil, fmt.Errorf("update views: %w", err)
	}
	return event, nil
}

func (s *eventService) GetAdminEvents(ctx context.Context, filter domain.AdminSearchFilter) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filter.RangeStart != nil && filter.RangeEnd != nil && filter.RangeStart.After(*filter.RangeEnd) {
		return nil, fmt.Errorf("%w: start date must be before end date", domain.ErrValidation)
	}

	events, err := s.eventRepo.SearchAdmin(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return events, nil
}

// recordHit reports the visit to the stats collector. Best effort: a failure
// is logged and never surfaces to the caller.
func (s *eventService) recordHit(ctx context.Context, ip, uri string) {
	err := s.statsClient.RecordHit(ctx, domain.EndpointHit{
		App:       s.appName,
		URI:       uri,
		IP:        ip,
		Timestamp: time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to record endpoint hit", "uri", uri, "err", err)
	}
}

// queryViews fetches unique view counts for the given events, keyed by event id.
// On any failure every event falls back to zero views.
func (s *eventService) queryViews(ctx context.Context, events []*domain.Event) map[int64]int64 {
	views := make(map[int64]int64, len(events))
	if len(events) == 0 {
		return views
	}

	uris := make([]string, 0, len(events))
	byURI := make(map[string]int64, len(events))
	for _, event := range events {
		uri := eventURI(event.ID)
		uris = append(uris, uri)
		byURI[uri] = event.ID
	}

	stats, err := s.statsClient.QueryViews(ctx, viewsSince, time.Now().Add(24*time.Hour), uris, true)
	if err != nil {
		s.logger.Warn("failed to query views, defaulting to zero", "err", err)
		return views
	}
	for uri, hits := range stats {
		if id, ok := byURI[uri]; ok {
			views[id] = hits
		}
	}
	return views
}

func eventURI(eventID int64) string {
	return "/events/" + strconv.FormatInt(eventID, 10)
}
