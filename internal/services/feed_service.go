package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/models"
	"github.com/seamarket/backend/internal/repositories"
)

// FeedService assembles the paginated, denormalized notification feed for
// one recipient: active notifications joined with sender identities and
// product snapshots.
type FeedService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	products      repositories.ProductRepository
}

// NewFeedService creates a new FeedService
func NewFeedService(
	notifications repositories.NotificationRepository,
	users repositories.UserRepository,
	products repositories.ProductRepository,
) *FeedService {
	return &FeedService{notifications: notifications, users: users, products: products}
}

// GetFeed returns one page of feed items for the recipient, most recent
// activity first. page and limit are 1-based.
func (s *FeedService) GetFeed(ctx context.Context, recipientID uint, page, limit int) ([]models.FeedItem, error) {
	if page < 1 || limit < 1 {
		return nil, fmt.Errorf("page and limit must be >= 1: %w", apperrors.ErrValidation)
	}

	notifications, err := s.notifications.GetFeedPage(recipientID, page, limit)
	if err != nil {
		return nil, err
	}

	items := make([]models.FeedItem, 0, len(notifications))
	userCache := make(map[uint]*models.User)
	for _, n := range notifications {
		item := models.FeedItem{
			ID:             n.ID,
			Type:           n.Type,
			Status:         n.Pressed,
			RecipientID:    n.RecipientID,
			Seen:           n.Seen,
			LastActivityAt: n.LastActivityAt,
			SenderSummary:  models.SenderSummary{Count: len(n.Senders)},
		}

		// The most recently added sender represents the aggregate.
		if repID, ok := n.LastSender(); ok {
			rep := userCache[repID]
			if rep == nil {
				u, err := s.users.GetUserByID(repID)
				switch {
				case err == nil:
					rep = u
					userCache[repID] = u
				case errors.Is(err, apperrors.ErrNotFound):
					// Account deleted; the summary keeps the count only.
				default:
					return nil, err
				}
			}
			if rep != nil {
				item.SenderSummary.ID = rep.ID
				item.SenderSummary.Name = rep.Name
				item.SenderSummary.Photo = rep.Photo
				item.SenderSummary.Role = rep.Role
			}
		}

		if n.ProductRef != "" {
			product, err := s.products.GetProductByID(ctx, n.ProductRef)
			switch {
			case err == nil:
				item.Product = &models.ProductSummary{
					ID:    product.ID.Hex(),
					Name:  product.Name,
					Image: product.Image.URI,
				}
			case errors.Is(err, apperrors.ErrNotFound):
				// Product deleted after the notification was raised;
				// keep the item with a null product summary.
			default:
				return nil, err
			}
		}

		items = append(items, item)
	}
	return items, nil
}
