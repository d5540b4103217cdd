package repositories

import (
	"errors"
	"fmt"

	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/models"
	"gorm.io/gorm"
)

// SubscriptionRepository defines the interface for the mirrored
// subscriber/subscription relation between buyers and sellers
type SubscriptionRepository interface {
	CreateSubscription(sub *models.Subscription) error
	DeleteSubscription(subscriberID, sellerID uint) error
	IsSubscribed(subscriberID, sellerID uint) (bool, error)
	GetSellerIDs(subscriberID uint) ([]uint, error)
	GetSubscriberIDs(sellerID uint) ([]uint, error)
	GetSubscriberCount(sellerID uint) (int64, error)
	GetSubscriptionCount(subscriberID uint) (int64, error)
}

// PostgresSubscriptionRepository implements SubscriptionRepository for PostgreSQL
type PostgresSubscriptionRepository struct {
	db *gorm.DB
}

// NewPostgresSubscriptionRepository creates a new PostgresSubscriptionRepository
func NewPostgresSubscriptionRepository(db *gorm.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

// CreateSubscription inserts the relation row. The unique index on
// (subscriber, seller) turns a concurrent double-subscribe into a Conflict.
func (r *PostgresSubscriptionRepository) CreateSubscription(sub *models.Subscription) error {
	if err := r.db.Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("already subscribed: %w", apperrors.ErrConflict)
		}
		return err
	}
	return nil
}

// DeleteSubscription removes the relation row; a missing row is a Conflict
// (redundant unsubscribe)
func (r *PostgresSubscriptionRepository) DeleteSubscription(subscriberID, sellerID uint) error {
	res := r.db.Where("subscriber_id = ? AND seller_id = ?", subscriberID, sellerID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("not subscribed: %w", apperrors.ErrConflict)
	}
	return nil
}

func (r *PostgresSubscriptionRepository) IsSubscribed(subscriberID, sellerID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Subscription{}).
		Where("subscriber_id = ? AND seller_id = ?", subscriberID, sellerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetSellerIDs returns the sellers the user follows
func (r *PostgresSubscriptionRepository) GetSellerIDs(subscriberID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Subscription{}).
		Where("subscriber_id = ?", subscriberID).
		Pluck("seller_id", &ids).Error
	return ids, err
}

// GetSubscriberIDs returns the users following the seller
func (r *PostgresSubscriptionRepository) GetSubscriberIDs(sellerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Subscription{}).
		Where("seller_id = ?", sellerID).
		Pluck("subscriber_id", &ids).Error
	return ids, err
}

func (r *PostgresSubscriptionRepository) GetSubscriberCount(sellerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Where("seller_id = ?", sellerID).Count(&count).Error
	return count, err
}

func (r *PostgresSubscriptionRepository) GetSubscriptionCount(subscriberID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Where("subscriber_id = ?", subscriberID).Count(&count).Error
	return count, err
}
