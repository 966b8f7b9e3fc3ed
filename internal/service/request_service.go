package service

import (
	"context"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// RequestService manages item requests ("looking for X") and the items
// offered in answer to them.
type RequestService struct {
	requests domain.RequestRepository
	items    domain.ItemRepository
	users    domain.UserRepository
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewRequestService(
	requests domain.RequestRepository,
	items domain.ItemRepository,
	users domain.UserRepository,
	clock domain.Clock,
	logger *zerolog.Logger,
) *RequestService {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &RequestService{
		requests: requests,
		items:    items,
		users:    users,
		clock:    clock,
		logger:   logger,
	}
}

func (s *RequestService) Create(ctx context.Context, requestorID int64, description string) (*models.ItemRequest, error) {
	if _, err := s.users.GetUserByID(ctx, requestorID); err != nil {
		return nil, translateNotFound(err, "user", requestorID)
	}

	request := &models.ItemRequest{
		Description: description,
		RequestorID: requestorID,
		Created:     s.clock.Now(),
	}
	if err := s.requests.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("request_id", request.ID).Int64("requestor_id", requestorID).Msg("item request created")
	return request, nil
}

// GetOwn returns the caller's requests, newest first, each with the items
// offered for it.
func (s *RequestService) GetOwn(ctx context.Context, requestorID int64) ([]models.RequestView, error) {
	if _, err := s.users.GetUserByID(ctx, requestorID); err != nil {
		return nil, translateNotFound(err, "user", requestorID)
	}
	requests, err := s.requests.GetRequestsByRequestor(ctx, requestorID)
	if err != nil {
		return nil, err
	}
	return s.assembleRequestViews(ctx, requests)
}

// GetAll returns other users' requests, newest first, windowed by (from, size).
func (s *RequestService) GetAll(ctx context.Context, callerID int64, from, size int) ([]models.RequestView, error) {
	if _, err := s.users.GetUserByID(ctx, callerID); err != nil {
		return nil, translateNotFound(err, "user", callerID)
	}
	offset := pageOffset(from, size)
	requests, err := s.requests.GetRequestsFromOthers(ctx, callerID, offset, size)
	if err != nil {
		return nil, err
	}
	return s.assembleRequestViews(ctx, requests)
}

func (s *RequestService) GetByID(ctx context.Context, callerID, requestID int64) (*models.RequestView, error) {
	if _, err := s.users.GetUserByID(ctx, callerID); err != nil {
		return nil, translateNotFound(err, "user", callerID)
	}
	request, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, translateNotFound(err, "request", requestID)
	}
	views, err := s.assembleRequestViews(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// assembleRequestViews attaches offered items with one batched lookup over
// the request-id set.
func (s *RequestService) assembleRequestViews(ctx context.Context, requests []*models.ItemRequest) ([]models.RequestView, error) {
	if len(requests) == 0 {
		return []models.RequestView{}, nil
	}

	requestIDs := make([]int64, 0, len(requests))
	for _, r := range requests {
		requestIDs = append(requestIDs, r.ID)
	}
	items, err := s.items.GetItemsByRequestIDs(ctx, requestIDs)
	if err != nil {
		return nil, err
	}

	itemsByRequest := make(map[int64][]models.Item)
	for _, item := range items {
		if item.RequestID == nil {
			continue
		}
		itemsByRequest[*item.RequestID] = append(itemsByRequest[*item.RequestID], *item)
	}

	views := make([]models.RequestView, 0, len(requests))
	for _, r := range requests {
		view := models.RequestView{
			ID:          r.ID,
			Description: r.Description,
			Created:     r.Created,
			Items:       itemsByRequest[r.ID],
		}
		if view.Items == nil {
			view.Items = []models.Item{}
		}
		views = append(views, view)
	}
	return views, nil
}
