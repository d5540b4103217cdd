package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository defines the interface for notification state
// transitions and feed queries. Each mutation is atomic per correlation key
// (recipient, type, product ref): the implementation combines a composite
// unique index with a locked find-or-create transaction, so two concurrent
// events for the same key can never create duplicate records.
type NotificationRepository interface {
	UpsertSubscription(recipientID, actorID uint) error
	ExpireSubscription(recipientID uint) error
	AppendSaveSender(recipientID uint, productRef string, actorID uint) error
	RemoveSaveSender(recipientID uint, productRef string, actorID uint) error
	GetFeedPage(recipientID uint, page, limit int) ([]models.Notification, error)
	MarkSeen(ids []uint) (int64, error)
	MarkPressed(id uint) (*models.Notification, error)
	DeleteByProductRef(productRef string) error
}

// PostgresNotificationRepository implements NotificationRepository for PostgreSQL
type PostgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository
func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// lockByKey loads the notification for a correlation key with a FOR UPDATE
// lock, senders included. Returns gorm.ErrRecordNotFound when absent.
func lockByKey(tx *gorm.DB, recipientID uint, notifType, productRef string) (*models.Notification, error) {
	var n models.Notification
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("recipient_id = ? AND type = ? AND product_ref = ?", recipientID, notifType, productRef).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	if err := tx.Where("notification_id = ?", n.ID).Order("id ASC").Find(&n.Senders).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// createForKey inserts a fresh notification with a single sender. The insert
// runs in a nested transaction so that a lost race rolls back to its
// savepoint only: on Postgres a unique-key violation aborts the surrounding
// transaction, and without the savepoint the caller's re-read would fail too.
func createForKey(tx *gorm.DB, recipientID uint, notifType, productRef string, actorID uint, now time.Time) (created bool, err error) {
	n := models.Notification{
		Type:           notifType,
		RecipientID:    recipientID,
		ProductRef:     productRef,
		LastActivityAt: now,
		CreatedAt:      now,
		Senders:        []models.NotificationSender{{SenderID: actorID}},
	}
	err = tx.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&n).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// findOrCreateLocked resolves the record for one correlation key inside an
// open transaction: lock the row, create it when absent, and after a lost
// create race re-read the winner's row under lock. created reports whether
// this transaction inserted the record; n is nil in that case.
func findOrCreateLocked(lock func() (*models.Notification, error), create func() (bool, error)) (n *models.Notification, created bool, err error) {
	n, err = lock()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created, err = create()
		if err != nil || created {
			return nil, created, err
		}
		n, err = lock()
	}
	if err != nil {
		return nil, false, err
	}
	return n, false, nil
}

// UpsertSubscription records a subscribe event for the recipient. An
// existing record is re-activated without touching its sender set; the
// sender set records the creating actor only.
func (r *PostgresNotificationRepository) UpsertSubscription(recipientID, actorID uint) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		n, created, err := findOrCreateLocked(
			func() (*models.Notification, error) {
				return lockByKey(tx, recipientID, models.NotificationTypeSubscription, "")
			},
			func() (bool, error) {
				return createForKey(tx, recipientID, models.NotificationTypeSubscription, "", actorID, now)
			},
		)
		if err != nil {
			return err
		}
		if created {
			return nil
		}
		n.Reactivate(now)
		return tx.Model(&models.Notification{}).Where("id = ?", n.ID).
			Updates(map[string]interface{}{"expired": false, "last_activity_at": now}).Error
	})
}

// ExpireSubscription marks the recipient's subscription notification
// expired. Unsubscribe never deletes the record; absence is a no-op.
func (r *PostgresNotificationRepository) ExpireSubscription(recipientID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND type = ?", recipientID, models.NotificationTypeSubscription).
		Update("expired", true).Error
}

// AppendSaveSender records a save event: find-or-create the product-saved
// notification for (recipient, product) and append the actor to its sender
// set, re-activating the record.
func (r *PostgresNotificationRepository) AppendSaveSender(recipientID uint, productRef string, actorID uint) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		n, created, err := findOrCreateLocked(
			func() (*models.Notification, error) {
				return lockByKey(tx, recipientID, models.NotificationTypeProductSaved, productRef)
			},
			func() (bool, error) {
				return createForKey(tx, recipientID, models.NotificationTypeProductSaved, productRef, actorID, now)
			},
		)
		if err != nil {
			return err
		}
		if created {
			return nil
		}
		if n.AppendSender(actorID, now) {
			sender := models.NotificationSender{NotificationID: n.ID, SenderID: actorID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sender).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Notification{}).Where("id = ?", n.ID).
			Updates(map[string]interface{}{"expired": false, "last_activity_at": now}).Error
	})
}

// RemoveSaveSender records an unsave event: drop the actor from the sender
// set; the record expires when the set empties and is never re-activated by
// a removal. A missing record is a no-op.
func (r *PostgresNotificationRepository) RemoveSaveSender(recipientID uint, productRef string, actorID uint) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		n, err := lockByKey(tx, recipientID, models.NotificationTypeProductSaved, productRef)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !n.RemoveSender(actorID, now) {
			return nil
		}
		if err := tx.Where("notification_id = ? AND sender_id = ?", n.ID, actorID).
			Delete(&models.NotificationSender{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Notification{}).Where("id = ?", n.ID).
			Updates(map[string]interface{}{"expired": n.Expired, "last_activity_at": now}).Error
	})
}

// GetFeedPage returns one page of active notifications for the recipient,
// most recent activity first, senders preloaded in insertion order.
// Pure offset pagination; ordering across pages is stable only without
// concurrent writes.
func (r *PostgresNotificationRepository) GetFeedPage(recipientID uint, page, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	offset := (page - 1) * limit
	err := r.db.
		Preload("Senders", func(db *gorm.DB) *gorm.DB { return db.Order("notification_senders.id ASC") }).
		Where("recipient_id = ? AND expired = false", recipientID).
		Order("last_activity_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkSeen sets seen on every matching record and reports how many were
// updated. Unknown ids are silently ignored.
func (r *PostgresNotificationRepository) MarkSeen(ids []uint) (int64, error) {
	res := r.db.Model(&models.Notification{}).Where("id IN ?", ids).Update("seen", true)
	return res.RowsAffected, res.Error
}

// MarkPressed sets the pressed flag on exactly one record and returns it.
func (r *PostgresNotificationRepository) MarkPressed(id uint) (*models.Notification, error) {
	res := r.db.Model(&models.Notification{}).Where("id = ?", id).Update("pressed", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("notification %d: %w", id, apperrors.ErrNotFound)
	}
	var n models.Notification
	if err := r.db.Preload("Senders", func(db *gorm.DB) *gorm.DB { return db.Order("notification_senders.id ASC") }).
		First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// DeleteByProductRef hard-deletes every product-saved notification for the
// product; part of the product-deleted cascade.
func (r *PostgresNotificationRepository) DeleteByProductRef(productRef string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.Notification{}).
			Where("type = ? AND product_ref = ?", models.NotificationTypeProductSaved, productRef).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("notification_id IN ?", ids).Delete(&models.NotificationSender{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Notification{}).Error
	})
}
