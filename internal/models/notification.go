package models

import "time"

// Notification types. The type decides the correlation key: a subscription
// notification is keyed by recipient alone, a product-saved notification by
// recipient plus product reference.
const (
	NotificationTypeSubscription = "subscription"
	NotificationTypeProductSaved = "product_saved"
)

// Notification represents an aggregated user notification (PostgreSQL).
// At most one row exists per (recipient, type, product_ref); the composite
// unique index backs the find-or-create upsert in the repository.
type Notification struct {
	ID             uint                 `json:"id" gorm:"primaryKey"`
	Type           string               `json:"type" gorm:"size:30;uniqueIndex:idx_notification_key"`
	RecipientID    uint                 `json:"recipient_id" gorm:"index;uniqueIndex:idx_notification_key"`
	ProductRef     string               `json:"product_ref,omitempty" gorm:"size:24;default:'';uniqueIndex:idx_notification_key"` // Empty for subscription notifications
	Expired        bool                 `json:"expired" gorm:"default:false;index"`
	Seen           bool                 `json:"seen" gorm:"default:false"`
	Pressed        bool                 `json:"status" gorm:"default:false"` // True once the recipient opened the notification
	LastActivityAt time.Time            `json:"last_activity_at" gorm:"index"`
	CreatedAt      time.Time            `json:"created_at"`
	Senders        []NotificationSender `json:"senders" gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE"`
}

// NotificationSender is one element of a notification's ordered sender set.
// Insertion order is the primary key order; (notification, sender) is unique.
type NotificationSender struct {
	ID             uint `json:"id" gorm:"primaryKey"`
	NotificationID uint `json:"notification_id" gorm:"index;uniqueIndex:idx_notification_sender"`
	SenderID       uint `json:"sender_id" gorm:"uniqueIndex:idx_notification_sender"`
}

// SenderIDs returns the sender set in insertion order.
func (n *Notification) SenderIDs() []uint {
	ids := make([]uint, len(n.Senders))
	for i, s := range n.Senders {
		ids[i] = s.SenderID
	}
	return ids
}

// HasSender reports whether userID is already in the sender set.
func (n *Notification) HasSender(userID uint) bool {
	for _, s := range n.Senders {
		if s.SenderID == userID {
			return true
		}
	}
	return false
}

// AppendSender adds userID to the end of the sender set unless already
// present. Any add re-activates the notification and bumps the activity
// timestamp. Returns true if the set changed.
func (n *Notification) AppendSender(userID uint, now time.Time) bool {
	n.Expired = false
	n.LastActivityAt = now
	if n.HasSender(userID) {
		return false
	}
	n.Senders = append(n.Senders, NotificationSender{NotificationID: n.ID, SenderID: userID})
	return true
}

// RemoveSender removes userID from the sender set. Removing the last sender
// expires the notification; removal never clears an existing expired flag.
// Returns true if the set changed.
func (n *Notification) RemoveSender(userID uint, now time.Time) bool {
	for i, s := range n.Senders {
		if s.SenderID == userID {
			n.Senders = append(n.Senders[:i], n.Senders[i+1:]...)
			n.LastActivityAt = now
			if len(n.Senders) == 0 {
				n.Expired = true
			}
			return true
		}
	}
	return false
}

// Reactivate clears the expired flag and bumps the activity timestamp
// without touching the sender set. Used when a subscription notification
// already exists for the recipient.
func (n *Notification) Reactivate(now time.Time) {
	n.Expired = false
	n.LastActivityAt = now
}

// LastSender returns the most recently added sender, the feed's
// representative actor. ok is false when the set is empty.
func (n *Notification) LastSender() (id uint, ok bool) {
	if len(n.Senders) == 0 {
		return 0, false
	}
	return n.Senders[len(n.Senders)-1].SenderID, true
}
