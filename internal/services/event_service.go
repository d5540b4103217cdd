package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/models"
	"github.com/seamarket/backend/internal/repositories"
)

// EventService is the reducer for subscribe/unsubscribe/save/unsave events.
// Each event mutates the relation state first (the source of truth) and
// then the matching notification. A notification write failure after a
// committed relation write is logged and not surfaced: the notification is
// a best-effort signal, and its own find-or-create is atomic per
// correlation key inside the repository.
type EventService struct {
	users         repositories.UserRepository
	subscriptions repositories.SubscriptionRepository
	saved         repositories.SavedProductRepository
	products      repositories.ProductRepository
	notifications repositories.NotificationRepository
}

// NewEventService creates a new EventService
func NewEventService(
	users repositories.UserRepository,
	subscriptions repositories.SubscriptionRepository,
	saved repositories.SavedProductRepository,
	products repositories.ProductRepository,
	notifications repositories.NotificationRepository,
) *EventService {
	return &EventService{
		users:         users,
		subscriptions: subscriptions,
		saved:         saved,
		products:      products,
		notifications: notifications,
	}
}

// Subscribe makes actor follow seller. Fails with Conflict when already
// subscribed, NotFound when either party is unknown.
func (s *EventService) Subscribe(actorID, sellerID uint) (*models.SubscriptionResponse, error) {
	if actorID == sellerID {
		return nil, fmt.Errorf("cannot subscribe to yourself: %w", apperrors.ErrValidation)
	}
	actor, err := s.users.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}
	seller, err := s.users.GetUserByID(sellerID)
	if err != nil {
		return nil, err
	}

	subscribed, err := s.subscriptions.IsSubscribed(actorID, sellerID)
	if err != nil {
		return nil, err
	}
	if subscribed {
		return nil, fmt.Errorf("already subscribed: %w", apperrors.ErrConflict)
	}

	sub := &models.Subscription{SubscriberID: actorID, SellerID: sellerID}
	if err := s.subscriptions.CreateSubscription(sub); err != nil {
		return nil, err
	}

	if err := s.notifications.UpsertSubscription(sellerID, actorID); err != nil {
		log.Printf("subscription notification for user %d not recorded: %v", sellerID, err)
	}

	return s.subscriptionResponse(true, actor, seller)
}

// Unsubscribe makes actor stop following seller. Fails with Conflict when
// not currently subscribed. The subscription notification is expired, never
// deleted.
func (s *EventService) Unsubscribe(actorID, sellerID uint) (*models.SubscriptionResponse, error) {
	actor, err := s.users.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}
	seller, err := s.users.GetUserByID(sellerID)
	if err != nil {
		return nil, err
	}

	if err := s.subscriptions.DeleteSubscription(actorID, sellerID); err != nil {
		return nil, err
	}

	if err := s.notifications.ExpireSubscription(sellerID); err != nil {
		log.Printf("subscription notification for user %d not expired: %v", sellerID, err)
	}

	return s.subscriptionResponse(false, actor, seller)
}

func (s *EventService) subscriptionResponse(subscribed bool, actor, seller *models.User) (*models.SubscriptionResponse, error) {
	actorPub, err := s.publicProfile(actor)
	if err != nil {
		return nil, err
	}
	sellerPub, err := s.publicProfile(seller)
	if err != nil {
		return nil, err
	}
	return &models.SubscriptionResponse{Subscribed: subscribed, Actor: actorPub, Target: sellerPub}, nil
}

func (s *EventService) publicProfile(user *models.User) (models.UserPublic, error) {
	pub := user.PublicProfile()
	subscribers, err := s.subscriptions.GetSubscriberCount(user.ID)
	if err != nil {
		return pub, err
	}
	following, err := s.subscriptions.GetSubscriptionCount(user.ID)
	if err != nil {
		return pub, err
	}
	pub.SubscriberCount = subscribers
	pub.SubscriptionCount = following
	return pub, nil
}

// ToggleSave saves the product for actor, or unsaves it when already saved.
// A save appends actor to the product-saved notification of the product's
// owner; an unsave removes it, expiring the notification once the sender
// set empties.
func (s *EventService) ToggleSave(ctx context.Context, actorID uint, productID string) (*models.SaveToggleResponse, error) {
	if _, err := s.users.GetUserByID(actorID); err != nil {
		return nil, err
	}
	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	alreadySaved, err := s.saved.IsProductSaved(actorID, productID)
	if err != nil {
		return nil, err
	}

	if alreadySaved {
		if err := s.saved.UnsaveProduct(actorID, productID); err != nil {
			return nil, err
		}
		if err := s.notifications.RemoveSaveSender(product.OwnerID, productID, actorID); err != nil {
			log.Printf("save notification for product %s not reduced: %v", productID, err)
		}
	} else {
		saved := &models.SavedProduct{UserID: actorID, ProductID: productID}
		if err := s.saved.SaveProduct(saved); err != nil {
			return nil, err
		}
		if err := s.notifications.AppendSaveSender(product.OwnerID, productID, actorID); err != nil {
			log.Printf("save notification for product %s not recorded: %v", productID, err)
		}
	}

	savers, err := s.saved.GetSaverIDs(productID)
	if err != nil {
		return nil, err
	}
	return &models.SaveToggleResponse{Saved: !alreadySaved, Product: *product, Savers: savers}, nil
}

// SavedProducts lists the actor's saved products in save order. Saves of
// since-deleted products are skipped.
func (s *EventService) SavedProducts(ctx context.Context, actorID uint) ([]models.Product, error) {
	ids, err := s.saved.GetSavedProductIDs(actorID)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		product, err := s.products.GetProductByID(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, nil
}
