package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository implementations backing the service tests.

type memUserRepo struct {
	nextID uint
	users  map[uint]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uint]*models.User)}
}

func (r *memUserRepo) CreateUser(user *models.User) error {
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetUserByID(id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
}

func (r *memUserRepo) UpdateUser(user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user %d: %w", user.ID, apperrors.ErrNotFound)
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) SearchUsers(key string, limit, page int) ([]models.User, error) {
	var out []models.User
	for _, user := range r.users {
		if strings.Contains(strings.ToLower(user.Name), strings.ToLower(key)) {
			out = append(out, *user)
		}
	}
	return out, nil
}

type memSubscriptionRepo struct {
	rows []models.Subscription
}

func newMemSubscriptionRepo() *memSubscriptionRepo { return &memSubscriptionRepo{} }

func (r *memSubscriptionRepo) CreateSubscription(sub *models.Subscription) error {
	for _, row := range r.rows {
		if row.SubscriberID == sub.SubscriberID && row.SellerID == sub.SellerID {
			return fmt.Errorf("already subscribed: %w", apperrors.ErrConflict)
		}
	}
	r.rows = append(r.rows, *sub)
	return nil
}

func (r *memSubscriptionRepo) DeleteSubscription(subscriberID, sellerID uint) error {
	for i, row := range r.rows {
		if row.SubscriberID == subscriberID && row.SellerID == sellerID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("not subscribed: %w", apperrors.ErrConflict)
}

func (r *memSubscriptionRepo) IsSubscribed(subscriberID, sellerID uint) (bool, error) {
	for _, row := range r.rows {
		if row.SubscriberID == subscriberID && row.SellerID == sellerID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memSubscriptionRepo) GetSellerIDs(subscriberID uint) ([]uint, error) {
	var ids []uint
	for _, row := range r.rows {
		if row.SubscriberID == subscriberID {
			ids = append(ids, row.SellerID)
		}
	}
	return ids, nil
}

func (r *memSubscriptionRepo) GetSubscriberIDs(sellerID uint) ([]uint, error) {
	var ids []uint
	for _, row := range r.rows {
		if row.SellerID == sellerID {
			ids = append(ids, row.SubscriberID)
		}
	}
	return ids, nil
}

func (r *memSubscriptionRepo) GetSubscriberCount(sellerID uint) (int64, error) {
	ids, _ := r.GetSubscriberIDs(sellerID)
	return int64(len(ids)), nil
}

func (r *memSubscriptionRepo) GetSubscriptionCount(subscriberID uint) (int64, error) {
	ids, _ := r.GetSellerIDs(subscriberID)
	return int64(len(ids)), nil
}

type memSavedProductRepo struct {
	rows []models.SavedProduct
}

func newMemSavedProductRepo() *memSavedProductRepo { return &memSavedProductRepo{} }

func (r *memSavedProductRepo) SaveProduct(saved *models.SavedProduct) error {
	for _, row := range r.rows {
		if row.UserID == saved.UserID && row.ProductID == saved.ProductID {
			return fmt.Errorf("product already saved: %w", apperrors.ErrConflict)
		}
	}
	r.rows = append(r.rows, *saved)
	return nil
}

func (r *memSavedProductRepo) UnsaveProduct(userID uint, productID string) error {
	for i, row := range r.rows {
		if row.UserID == userID && row.ProductID == productID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("saved product: %w", apperrors.ErrNotFound)
}

func (r *memSavedProductRepo) IsProductSaved(userID uint, productID string) (bool, error) {
	for _, row := range r.rows {
		if row.UserID == userID && row.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memSavedProductRepo) GetSaverIDs(productID string) ([]uint, error) {
	var ids []uint
	for _, row := range r.rows {
		if row.ProductID == productID {
			ids = append(ids, row.UserID)
		}
	}
	return ids, nil
}

func (r *memSavedProductRepo) GetSavedProductIDs(userID uint) ([]string, error) {
	var ids []string
	for _, row := range r.rows {
		if row.UserID == userID {
			ids = append(ids, row.ProductID)
		}
	}
	return ids, nil
}

func (r *memSavedProductRepo) DeleteByProduct(productID string) error {
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.ProductID != productID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

type memProductRepo struct {
	products map[string]*models.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[string]*models.Product)}
}

func (r *memProductRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	product.CreatedAt = time.Now()
	r.products[product.ID.Hex()] = product
	return nil
}

func (r *memProductRepo) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	copied := *product
	return &copied, nil
}

func (r *memProductRepo) GetProductsByOwner(ctx context.Context, ownerID uint, skip, limit int64) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.products {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) GetProductsByOwners(ctx context.Context, ownerIDs []uint, skip, limit int64) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.products {
		for _, id := range ownerIDs {
			if p.OwnerID == id {
				out = append(out, *p)
				break
			}
		}
	}
	return out, nil
}

func (r *memProductRepo) GetAllProducts(ctx context.Context, skip, limit int64) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProductRepo) SearchProducts(ctx context.Context, key string, skip, limit int64) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(key)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) UpdateProduct(ctx context.Context, id string, product *models.Product) error {
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	copied := *product
	r.products[id] = &copied
	return nil
}

func (r *memProductRepo) DeleteProduct(ctx context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

// memNotificationRepo applies the same state transitions as the Postgres
// implementation, keyed by (recipient, type, product ref).
type memNotificationRepo struct {
	nextID uint
	byKey  map[string]*models.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{byKey: make(map[string]*models.Notification)}
}

func notifKey(recipientID uint, notifType, productRef string) string {
	return fmt.Sprintf("%d|%s|%s", recipientID, notifType, productRef)
}

func (r *memNotificationRepo) create(recipientID uint, notifType, productRef string, actorID uint, now time.Time) *models.Notification {
	r.nextID++
	n := &models.Notification{
		ID:             r.nextID,
		Type:           notifType,
		RecipientID:    recipientID,
		ProductRef:     productRef,
		LastActivityAt: now,
		CreatedAt:      now,
		Senders:        []models.NotificationSender{{NotificationID: r.nextID, SenderID: actorID}},
	}
	r.byKey[notifKey(recipientID, notifType, productRef)] = n
	return n
}

func (r *memNotificationRepo) UpsertSubscription(recipientID, actorID uint) error {
	now := time.Now()
	if n, ok := r.byKey[notifKey(recipientID, models.NotificationTypeSubscription, "")]; ok {
		n.Reactivate(now)
		return nil
	}
	r.create(recipientID, models.NotificationTypeSubscription, "", actorID, now)
	return nil
}

func (r *memNotificationRepo) ExpireSubscription(recipientID uint) error {
	if n, ok := r.byKey[notifKey(recipientID, models.NotificationTypeSubscription, "")]; ok {
		n.Expired = true
	}
	return nil
}

func (r *memNotificationRepo) AppendSaveSender(recipientID uint, productRef string, actorID uint) error {
	now := time.Now()
	if n, ok := r.byKey[notifKey(recipientID, models.NotificationTypeProductSaved, productRef)]; ok {
		n.AppendSender(actorID, now)
		return nil
	}
	r.create(recipientID, models.NotificationTypeProductSaved, productRef, actorID, now)
	return nil
}

func (r *memNotificationRepo) RemoveSaveSender(recipientID uint, productRef string, actorID uint) error {
	if n, ok := r.byKey[notifKey(recipientID, models.NotificationTypeProductSaved, productRef)]; ok {
		n.RemoveSender(actorID, time.Now())
	}
	return nil
}

func (r *memNotificationRepo) GetFeedPage(recipientID uint, page, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.byKey {
		if n.RecipientID == recipientID && !n.Expired {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivityAt.After(out[j].LastActivityAt)
	})
	offset := (page - 1) * limit
	if offset >= len(out) {
		return []models.Notification{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *memNotificationRepo) MarkSeen(ids []uint) (int64, error) {
	var count int64
	for _, n := range r.byKey {
		for _, id := range ids {
			if n.ID == id {
				n.Seen = true
				count++
			}
		}
	}
	return count, nil
}

func (r *memNotificationRepo) MarkPressed(id uint) (*models.Notification, error) {
	for _, n := range r.byKey {
		if n.ID == id {
			n.Pressed = true
			copied := *n
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("notification %d: %w", id, apperrors.ErrNotFound)
}

func (r *memNotificationRepo) DeleteByProductRef(productRef string) error {
	for key, n := range r.byKey {
		if n.Type == models.NotificationTypeProductSaved && n.ProductRef == productRef {
			delete(r.byKey, key)
		}
	}
	return nil
}

// get returns the stored record for a correlation key, or nil.
func (r *memNotificationRepo) get(recipientID uint, notifType, productRef string) *models.Notification {
	return r.byKey[notifKey(recipientID, notifType, productRef)]
}

func (r *memNotificationRepo) count() int {
	return len(r.byKey)
}
