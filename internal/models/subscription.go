package models

import "time"

// Subscription represents a buyer following a seller
type Subscription struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SubscriberID uint      `json:"subscriber_id" gorm:"index;uniqueIndex:idx_subscriber_seller"`
	SellerID     uint      `json:"seller_id" gorm:"index;uniqueIndex:idx_subscriber_seller"`
	CreatedAt    time.Time `json:"created_at"`
}
