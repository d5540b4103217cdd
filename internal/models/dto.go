package models

import "time"

// Response DTOs. Each operation returns one of these shapes instead of
// re-listing model fields ad hoc, so password hashes and reset codes can
// never leak into a handler response.

// UserPublic is the projection of a user exposed to other users.
type UserPublic struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	Photo             string `json:"photo"`
	Role              string `json:"role"`
	About             string `json:"about,omitempty"`
	Address           string `json:"address,omitempty"`
	Phone             string `json:"phone,omitempty"`
	AvailableWA       bool   `json:"available_wa"`
	SubscriberCount   int64  `json:"subscriber_count"`
	SubscriptionCount int64  `json:"subscription_count"`
}

// PublicProfile builds the public projection without counts.
func (u *User) PublicProfile() UserPublic {
	return UserPublic{
		ID:          u.ID,
		Name:        u.Name,
		Photo:       u.Photo,
		Role:        u.Role,
		About:       u.About,
		Address:     u.Address,
		Phone:       u.Phone,
		AvailableWA: u.AvailableWA,
	}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Photo   string `json:"photo"`
	Phone   string `json:"phone,omitempty"`
	About   string `json:"about,omitempty"`
	Address string `json:"address,omitempty"`
	Token   string `json:"token"`
}

// SubscriptionResponse is returned by subscribe and unsubscribe.
type SubscriptionResponse struct {
	Subscribed bool       `json:"subscribed"`
	Actor      UserPublic `json:"actor"`
	Target     UserPublic `json:"target"`
}

// SaveToggleResponse is returned by the save toggle.
type SaveToggleResponse struct {
	Saved   bool    `json:"saved"`
	Product Product `json:"product"`
	Savers  []uint  `json:"savers"` // Current saver set of the product
}

// ProductSummary is the denormalized product slice of a feed item. A nil
// summary means the product was deleted after the notification was raised.
type ProductSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// SenderSummary collapses a notification's sender set for display: the
// total count plus the most recently added sender as representative.
type SenderSummary struct {
	ID    uint   `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Photo string `json:"photo,omitempty"`
	Role  string `json:"role,omitempty"`
	Count int    `json:"count"`
}

// FeedItem is one entry of the notification feed.
type FeedItem struct {
	ID             uint            `json:"id"`
	Type           string          `json:"type"`
	Status         bool            `json:"status"`
	RecipientID    uint            `json:"recipient_id"`
	Seen           bool            `json:"seen"`
	LastActivityAt time.Time       `json:"last_activity_at"`
	Product        *ProductSummary `json:"product"`
	SenderSummary  SenderSummary   `json:"sender_summary"`
}

// MarkSeenRequest is the body of the batch mark-seen call.
type MarkSeenRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}
