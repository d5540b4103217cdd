package services

import (
	"fmt"

	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/events"
	"github.com/seamarket/backend/internal/models"
	"github.com/seamarket/backend/internal/repositories"
)

// NotificationService exposes the mutation API over the notification store
// and consumes product lifecycle events.
type NotificationService struct {
	notifications repositories.NotificationRepository
	saved         repositories.SavedProductRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notifications repositories.NotificationRepository,
	saved repositories.SavedProductRepository,
) *NotificationService {
	return &NotificationService{notifications: notifications, saved: saved}
}

// MarkSeen marks every matching notification seen and returns the number
// updated. Unknown ids are ignored. The caller's ownership of the records
// is not verified; callers are trusted the way the identity collaborator
// trusts the session.
func (s *NotificationService) MarkSeen(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("ids must not be empty: %w", apperrors.ErrValidation)
	}
	return s.notifications.MarkSeen(ids)
}

// MarkPressed flags one notification as opened and returns the updated
// record, or NotFound.
func (s *NotificationService) MarkPressed(id uint) (*models.Notification, error) {
	return s.notifications.MarkPressed(id)
}

// HandleProductDeleted cascades a product deletion into the notification
// store and the saved-product relation.
func (s *NotificationService) HandleProductDeleted(ev events.ProductDeleted) error {
	if err := s.saved.DeleteByProduct(ev.ProductID); err != nil {
		return err
	}
	return s.notifications.DeleteByProductRef(ev.ProductID)
}
