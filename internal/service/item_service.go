package service

import (
	"context"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// ItemService manages the item catalog, the denormalized owner dashboard
// (last/next bookings plus comments) and commenting.
type ItemService struct {
	items    domain.ItemRepository
	users    domain.UserRepository
	bookings domain.BookingRepository
	comments domain.CommentRepository
	requests domain.RequestRepository
	cache    domain.ViewCache
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewItemService(
	items domain.ItemRepository,
	users domain.UserRepository,
	bookings domain.BookingRepository,
	comments domain.CommentRepository,
	requests domain.RequestRepository,
	cache domain.ViewCache,
	clock domain.Clock,
	logger *zerolog.Logger,
) *ItemService {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &ItemService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		requests: requests,
		cache:    cache,
		clock:    clock,
		logger:   logger,
	}
}

// Create registers a new item for ownerID. When the item answers an item
// request the request must exist.
func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		return nil, translateNotFound(err, "user", ownerID)
	}
	if item.RequestID != nil {
		if _, err := s.requests.GetRequestByID(ctx, *item.RequestID); err != nil {
			return nil, translateNotFound(err, "request", *item.RequestID)
		}
	}

	item.OwnerID = ownerID
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.invalidateOwner(ctx, ownerID)
	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

// Update applies a partial update. Non-owners get item-not-found rather than
// a permission error.
func (s *ItemService) Update(ctx context.Context, callerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, translateNotFound(err, "item", itemID)
	}
	if item.OwnerID != callerID {
		return nil, domain.NotFound("item", itemID)
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}
	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, translateNotFound(err, "item", itemID)
	}

	s.invalidateOwner(ctx, callerID)
	return item, nil
}

// GetItem returns the item with comments attached. The last/next booking
// summary is reserved for the owner.
func (s *ItemService) GetItem(ctx context.Context, callerID, itemID int64) (*models.ItemView, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, translateNotFound(err, "item", itemID)
	}

	aggregateOwnerID := int64(0)
	if item.OwnerID == callerID {
		aggregateOwnerID = callerID
	}
	views, err := s.assembleItemViews(ctx, aggregateOwnerID, []*models.Item{item})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListByOwner returns the owner dashboard. The first page is served from the
// view cache when warm; deeper pages always hit the store.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]models.ItemView, error) {
	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		return nil, translateNotFound(err, "user", ownerID)
	}

	firstPage := from == 0
	if firstPage && s.cache != nil {
		views, ok, err := s.cache.GetOwnerItems(ctx, ownerID, size)
		if err != nil {
			s.logger.Warn().Err(err).Int64("owner_id", ownerID).Msg("view cache read failed")
		} else if ok {
			return views, nil
		}
	}

	offset := pageOffset(from, size)
	items, err := s.items.GetItemsByOwner(ctx, ownerID, offset, size)
	if err != nil {
		return nil, err
	}
	views, err := s.assembleItemViews(ctx, ownerID, items)
	if err != nil {
		return nil, err
	}

	if firstPage && s.cache != nil {
		if err := s.cache.SetOwnerItems(ctx, ownerID, size, views); err != nil {
			s.logger.Warn().Err(err).Int64("owner_id", ownerID).Msg("view cache write failed")
		}
	}
	return views, nil
}

// Search matches available items by name or description, case-insensitive.
// Blank text short-circuits to an empty result.
func (s *ItemService) Search(ctx context.Context, text string, from, size int) ([]models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []models.Item{}, nil
	}

	offset := pageOffset(from, size)
	items, err := s.items.SearchItems(ctx, strings.ToLower(text), offset, size)
	if err != nil {
		return nil, err
	}

	result := make([]models.Item, 0, len(items))
	for _, item := range items {
		result = append(result, *item)
	}
	return result, nil
}

// AddComment lets a user review an item they actually rented: a finished
// booking by the author on the item must exist.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.CommentView, error) {
	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, translateNotFound(err, "user", authorID)
	}
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, translateNotFound(err, "item", itemID)
	}

	now := s.clock.Now()
	finished, err := s.bookings.HasFinishedBooking(ctx, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, domain.BadRequest("no finished booking for this item")
	}

	comment := &models.Comment{
		Text:     text,
		ItemID:   itemID,
		AuthorID: authorID,
		Created:  now,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.invalidateOwner(ctx, item.OwnerID)
	return &models.CommentView{
		ID:         comment.ID,
		Text:       comment.Text,
		AuthorName: author.Name,
		Created:    comment.Created,
	}, nil
}

// assembleItemViews attaches comments to every view and, when ownerID is
// non-zero, the last/next booking refs for that owner's items. All lookups
// are batched over the item-id set.
func (s *ItemService) assembleItemViews(ctx context.Context, ownerID int64, items []*models.Item) ([]models.ItemView, error) {
	if len(items) == 0 {
		return []models.ItemView{}, nil
	}

	itemIDs := make([]int64, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}

	var lastByItem, nextByItem map[int64]*models.Booking
	if ownerID != 0 {
		now := s.clock.Now()
		var err error
		lastByItem, err = s.bookings.GetLastBookings(ctx, itemIDs, now, ownerID)
		if err != nil {
			return nil, err
		}
		nextByItem, err = s.bookings.GetNextBookings(ctx, itemIDs, now, ownerID)
		if err != nil {
			return nil, err
		}
	}

	comments, err := s.comments.GetCommentsByItemIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	authorIDs := make([]int64, 0, len(comments))
	seenAuthors := make(map[int64]bool)
	for _, c := range comments {
		if !seenAuthors[c.AuthorID] {
			seenAuthors[c.AuthorID] = true
			authorIDs = append(authorIDs, c.AuthorID)
		}
	}
	authors, err := s.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	commentsByItem := make(map[int64][]models.CommentView)
	for _, c := range comments {
		view := models.CommentView{ID: c.ID, Text: c.Text, Created: c.Created}
		if author := authors[c.AuthorID]; author != nil {
			view.AuthorName = author.Name
		}
		commentsByItem[c.ItemID] = append(commentsByItem[c.ItemID], view)
	}

	views := make([]models.ItemView, 0, len(items))
	for _, item := range items {
		view := models.ItemView{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Available:   item.Available,
			RequestID:   item.RequestID,
			Comments:    commentsByItem[item.ID],
		}
		if view.Comments == nil {
			view.Comments = []models.CommentView{}
		}
		if b := lastByItem[item.ID]; b != nil {
			view.LastBooking = &models.BookingRef{ID: b.ID, BookerID: b.BookerID, Start: b.Start, End: b.End}
		}
		if b := nextByItem[item.ID]; b != nil {
			view.NextBooking = &models.BookingRef{ID: b.ID, BookerID: b.BookerID, Start: b.Start, End: b.End}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ItemService) invalidateOwner(ctx context.Context, ownerID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateOwner(ctx, ownerID); err != nil {
		s.logger.Warn().Err(err).Int64("owner_id", ownerID).Msg("view cache invalidation failed")
	}
}
