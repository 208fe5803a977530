package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cityevents/internal/domain"
)

type requestService struct {
	requestRepo    domain.RequestRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	tx             domain.Transactor
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewRequestService(
	requestRepo domain.RequestRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	tx domain.Transactor,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RequestService {
	return &requestService{
		requestRepo:    requestRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		tx:             tx,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *requestService) AddRequest(ctx context.Context, userID, eventID int64) (*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var req *domain.ParticipationRequest
	var event *domain.Event

	// The limit check and the confirmed-count increment must see the same
	// counter value, so the event row stays locked for the whole operation.
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get user: %w", err)
		}

		ev, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		event = ev

		exists, err := s.requestRepo.ExistsByEventAndRequester(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("check existing request: %w", err)
		}
		if exists {
			return domain.ErrDuplicateRequest
		}
		if event.InitiatorID == userID {
			return fmt.Errorf("%w: event initiator cannot request participation in their own event", domain.ErrConflict)
		}
		if event.State != domain.EventStatePublished {
			return fmt.Errorf("%w: cannot participate in unpublished event", domain.ErrConflict)
		}
		if event.IsFull() {
			return domain.ErrLimitReached
		}

		req = &domain.ParticipationRequest{
			EventID:     eventID,
			RequesterID: userID,
			Created:     time.Now(),
			Status:      domain.RequestStatusPending,
		}

		// Auto-approval: no moderation or unlimited capacity confirms immediately.
		if !event.RequestModeration || event.ParticipantLimit == 0 {
			req.Status = domain.RequestStatusConfirmed
			event.ConfirmedRequests++
			if err := s.eventRepo.UpdateConfirmedRequests(ctx, event.ID, event.ConfirmedRequests); err != nil {
				return fmt.Errorf("update confirmed requests: %w", err)
			}
		}

		if err := s.requestRepo.Create(ctx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Status == domain.RequestStatusConfirmed {
		s.notifyConfirmed(ctx, event, req.RequesterID)
	}
	return req, nil
}

func (s *requestService) GetUserRequests(ctx context.Context, userID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	reqs, err := s.requestRepo.ListByRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return reqs, nil
}

func (s *requestService) CancelRequest(ctx context.Context, userID, requestID int64) (*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var req *domain.ParticipationRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := s.requestRepo.GetByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get request: %w", err)
		}
		// A request owned by someone else looks exactly like a missing one.
		if r.RequesterID != userID {
			return domain.ErrNotFound
		}
		req = r

		// Capture the status before the transition: a confirmed seat must be
		// released back to the event.
		wasConfirmed := req.Status == domain.RequestStatusConfirmed

		req.Status = domain.RequestStatusCanceled
		if err := s.requestRepo.UpdateStatus(ctx, req.ID, domain.RequestStatusCanceled); err != nil {
			return fmt.Errorf("update request status: %w", err)
		}

		if wasConfirmed {
			event, err := s.eventRepo.GetByIDForUpdate(ctx, req.EventID)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if err := s.eventRepo.UpdateConfirmedRequests(ctx, event.ID, event.ConfirmedRequests-1); err != nil {
				return fmt.Errorf("update confirmed requests: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) GetEventRequests(ctx context.Context, userID, eventID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.InitiatorID != userID {
		return nil, domain.ErrNotFound
	}
	reqs, err := s.requestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return reqs, nil
}

func (s *requestService) UpdateRequestStatus(ctx context.Context, userID, eventID int64, update domain.StatusUpdate) (*domain.StatusUpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if update.Status != domain.RequestStatusConfirmed && update.Status != domain.RequestStatusRejected {
		return nil, fmt.Errorf("%w: status must be CONFIRMED or REJECTED", domain.ErrValidation)
	}

	result := &domain.StatusUpdateResult{
		Confirmed: []*domain.ParticipationRequest{},
		Rejected:  []*domain.ParticipationRequest{},
	}
	var event *domain.Event

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ev, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		if ev.InitiatorID != userID {
			return domain.ErrNotFound
		}
		event = ev

		if update.Status == domain.RequestStatusConfirmed && event.IsFull() {
			return domain.ErrLimitReached
		}

		reqs, err := s.requestRepo.ListByIDs(ctx, update.RequestIDs)
		if err != nil {
			return fmt.Errorf("list requests: %w", err)
		}

		for _, req := range reqs {
			if req.Status != domain.RequestStatusPending {
				return fmt.Errorf("%w: request must have status PENDING", domain.ErrConflict)
			}

			switch {
			case update.Status == domain.RequestStatusConfirmed && event.IsFull():
				// The limit filled up mid-batch; the remainder is rejected.
				req.Status = domain.RequestStatusRejected
				result.Rejected = append(result.Rejected, req)
			case update.Status == domain.RequestStatusConfirmed:
				req.Status = domain.RequestStatusConfirmed
				event.ConfirmedRequests++
				result.Confirmed = append(result.Confirmed, req)
			default:
				req.Status = domain.RequestStatusRejected
				result.Rejected = append(result.Rejected, req)
			}

			if err := s.requestRepo.UpdateStatus(ctx, req.ID, req.Status); err != nil {
				return fmt.Errorf("update request status: %w", err)
			}
		}

		// Once the event is full no pending request can ever be confirmed.
		if event.IsFull() {
			all, err := s.requestRepo.ListByEvent(ctx, eventID)
			if err != nil {
				return fmt.Errorf("list event requests: %w", err)
			}
			for _, pending := range all {
				if pending.Status != domain.RequestStatusPending {
					continue
				}
				pending.Status = domain.RequestStatusRejected
				if err := s.requestRepo.UpdateStatus(ctx, pending.ID, domain.RequestStatusRejected); err != nil {
					return fmt.Errorf("update request status: %w", err)
				}
				result.Rejected = append(result.Rejected, pending)
			}
		}

		if err := s.eventRepo.UpdateConfirmedRequests(ctx, event.ID, event.ConfirmedRequests); err != nil {
			return fmt.Errorf("update confirmed requests: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, req := range result.Confirmed {
		s.notifyConfirmed(ctx, event, req.RequesterID)
	}
	return result, nil
}

// notifyConfirmed sends the confirmation email. Best effort: failures are
// logged and never fail the request operation.
func (s *requestService) notifyConfirmed(ctx context.Context, event *domain.Event, requesterID int64) {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		s.logger.Warn("failed to load requester for confirmation email", "user_id", requesterID, "err", err)
		return
	}
	data := &domain.RequestConfirmedEmailData{
		Email:      requester.Email,
		Name:       requester.Name,
		EventTitle: event.Title,
		EventDate:  event.EventDate.Format("2006-01-02 15:04:05"),
	}
	if err := s.emailService.SendRequestConfirmed(ctx, data); err != nil {
		s.logger.Warn("failed to send confirmation email", "user_id", requesterID, "err", err)
	}
}
