package models

import "time"

// SavedProduct represents a product bookmarked by a user. The set of rows
// for one product is that product's saver set.
type SavedProduct struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_product_save"`
	ProductID string    `json:"product_id" gorm:"size:24;index;uniqueIndex:idx_user_product_save"`
	CreatedAt time.Time `json:"created_at"`
}
