package services

import (
	"context"
	"errors"
	"testing"

	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type eventFixture struct {
	users         *memUserRepo
	subscriptions *memSubscriptionRepo
	saved         *memSavedProductRepo
	products      *memProductRepo
	notifications *memNotificationRepo
	service       *EventService
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	f := &eventFixture{
		users:         newMemUserRepo(),
		subscriptions: newMemSubscriptionRepo(),
		saved:         newMemSavedProductRepo(),
		products:      newMemProductRepo(),
		notifications: newMemNotificationRepo(),
	}
	f.service = NewEventService(f.users, f.subscriptions, f.saved, f.products, f.notifications)
	return f
}

func (f *eventFixture) addUser(t *testing.T, name string) uint {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com"}
	if err := f.users.CreateUser(u); err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return u.ID
}

func (f *eventFixture) addProduct(t *testing.T, ownerID uint, name string) string {
	t.Helper()
	p := &models.Product{ID: primitive.NewObjectID(), OwnerID: ownerID, Name: name}
	if err := f.products.CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("CreateProduct(%s): %v", name, err)
	}
	return p.ID.Hex()
}

func TestSubscribeCreatesNotification(t *testing.T) {
	f := newEventFixture(t)
	buyer := f.addUser(t, "buyer")
	seller := f.addUser(t, "seller")

	resp, err := f.service.Subscribe(buyer, seller)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if !resp.Subscribed {
		t.Error("response not marked subscribed")
	}
	if resp.Target.SubscriberCount != 1 {
		t.Errorf("target subscriber count = %d, want 1", resp.Target.SubscriberCount)
	}

	n := f.notifications.get(seller, models.NotificationTypeSubscription, "")
	if n == nil {
		t.Fatal("no subscription notification created")
	}
	if n.Expired {
		t.Error("new notification is expired")
	}
	if ids := n.SenderIDs(); len(ids) != 1 || ids[0] != buyer {
		t.Errorf("senders = %v, want [%d]", ids, buyer)
	}
}

func TestSubscribeUnsubscribeSubscribeKeepsOneRecord(t *testing.T) {
	f := newEventFixture(t)
	buyer := f.addUser(t, "buyer")
	seller := f.addUser(t, "seller")

	if _, err := f.service.Subscribe(buyer, seller); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}
	if _, err := f.service.Unsubscribe(buyer, seller); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}

	n := f.notifications.get(seller, models.NotificationTypeSubscription, "")
	if n == nil || !n.Expired {
		t.Fatal("unsubscribe did not expire the notification")
	}

	if _, err := f.service.Subscribe(buyer, seller); err != nil {
		t.Fatalf("second subscribe: %v", err)
	}

	if f.notifications.count() != 1 {
		t.Errorf("notification records = %d, want 1", f.notifications.count())
	}
	n = f.notifications.get(seller, models.NotificationTypeSubscription, "")
	if n.Expired {
		t.Error("re-subscribe did not re-activate the notification")
	}
}

func TestDoubleSubscribeConflictLeavesStateUnchanged(t *testing.T) {
	f := newEventFixture(t)
	buyer := f.addUser(t, "buyer")
	seller := f.addUser(t, "seller")

	if _, err := f.service.Subscribe(buyer, seller); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}

	_, err := f.service.Subscribe(buyer, seller)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("second subscribe error = %v, want Conflict", err)
	}

	count, _ := f.subscriptions.GetSubscriberCount(seller)
	if count != 1 {
		t.Errorf("subscriber count after conflict = %d, want 1", count)
	}
	if f.notifications.count() != 1 {
		t.Errorf("notification records = %d, want 1", f.notifications.count())
	}
}

func TestUnsubscribeWithoutSubscriptionIsConflict(t *testing.T) {
	f := newEventFixture(t)
	buyer := f.addUser(t, "buyer")
	seller := f.addUser(t, "seller")

	_, err := f.service.Unsubscribe(buyer, seller)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("error = %v, want Conflict", err)
	}
}

func TestSubscribeUnknownPartiesNotFound(t *testing.T) {
	f := newEventFixture(t)
	buyer := f.addUser(t, "buyer")

	tests := []struct {
		name           string
		actorID, tgtID uint
	}{
		{"unknown seller", buyer, 99},
		{"unknown actor", 98, buyer},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.service.Subscribe(tc.actorID, tc.tgtID); !errors.Is(err, apperrors.ErrNotFound) {
				t.Errorf("error = %v, want NotFound", err)
			}
		})
	}
}

func TestSelfSubscribeRejected(t *testing.T) {
	f := newEventFixture(t)
	buyer := f.addUser(t, "buyer")

	if _, err := f.service.Subscribe(buyer, buyer); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestToggleSaveAggregatesSenders(t *testing.T) {
	// A saves P owned by B, then C saves P: one notification for B with
	// senders [A, C]. A unsaves: [C], still active. C unsaves: empty and
	// expired.
	f := newEventFixture(t)
	a := f.addUser(t, "alice")
	b := f.addUser(t, "bob")
	c := f.addUser(t, "carol")
	productID := f.addProduct(t, b, "dried fish")

	ctx := context.Background()

	resp, err := f.service.ToggleSave(ctx, a, productID)
	if err != nil {
		t.Fatalf("save by A: %v", err)
	}
	if !resp.Saved {
		t.Error("save response not marked saved")
	}

	n := f.notifications.get(b, models.NotificationTypeProductSaved, productID)
	if n == nil {
		t.Fatal("no product-saved notification created")
	}
	if n.Expired || len(n.Senders) != 1 {
		t.Fatalf("after first save: expired=%v senders=%v", n.Expired, n.SenderIDs())
	}

	if _, err := f.service.ToggleSave(ctx, c, productID); err != nil {
		t.Fatalf("save by C: %v", err)
	}
	if ids := n.SenderIDs(); len(ids) != 2 || ids[0] != a || ids[1] != c {
		t.Fatalf("senders = %v, want [%d %d]", ids, a, c)
	}
	if last, _ := n.LastSender(); last != c {
		t.Errorf("representative sender = %d, want %d", last, c)
	}

	if _, err := f.service.ToggleSave(ctx, a, productID); err != nil {
		t.Fatalf("unsave by A: %v", err)
	}
	if ids := n.SenderIDs(); len(ids) != 1 || ids[0] != c {
		t.Fatalf("senders after A unsave = %v, want [%d]", ids, c)
	}
	if n.Expired {
		t.Error("notification expired while senders remain")
	}

	if _, err := f.service.ToggleSave(ctx, c, productID); err != nil {
		t.Fatalf("unsave by C: %v", err)
	}
	if !n.Expired || len(n.Senders) != 0 {
		t.Errorf("after last unsave: expired=%v senders=%v", n.Expired, n.SenderIDs())
	}
}

func TestSaveUnsaveSaveSingleSender(t *testing.T) {
	f := newEventFixture(t)
	buyer := f.addUser(t, "buyer")
	seller := f.addUser(t, "seller")
	productID := f.addProduct(t, seller, "salted eggs")

	ctx := context.Background()
	for i := 0; i < 3; i++ { // save, unsave, save
		if _, err := f.service.ToggleSave(ctx, buyer, productID); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
	}

	n := f.notifications.get(seller, models.NotificationTypeProductSaved, productID)
	if n == nil {
		t.Fatal("no product-saved notification")
	}
	if ids := n.SenderIDs(); len(ids) != 1 || ids[0] != buyer {
		t.Errorf("senders = %v, want [%d]", ids, buyer)
	}
	if n.Expired {
		t.Error("notification expired after final save")
	}
	if f.notifications.count() != 1 {
		t.Errorf("notification records = %d, want 1", f.notifications.count())
	}

	savers, _ := f.saved.GetSaverIDs(productID)
	if len(savers) != 1 || savers[0] != buyer {
		t.Errorf("saver set = %v, want [%d]", savers, buyer)
	}
}

func TestSavedProductsSkipsDeleted(t *testing.T) {
	f := newEventFixture(t)
	buyer := f.addUser(t, "buyer")
	seller := f.addUser(t, "seller")
	kept := f.addProduct(t, seller, "fresh crab")
	doomed := f.addProduct(t, seller, "stale crab")

	ctx := context.Background()
	for _, id := range []string{kept, doomed} {
		if _, err := f.service.ToggleSave(ctx, buyer, id); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	if err := f.products.DeleteProduct(ctx, doomed); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	products, err := f.service.SavedProducts(ctx, buyer)
	if err != nil {
		t.Fatalf("SavedProducts: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("products = %d, want 1 (deleted save skipped)", len(products))
	}
	if products[0].ID.Hex() != kept {
		t.Errorf("product = %s, want %s", products[0].ID.Hex(), kept)
	}
}

func TestToggleSaveUnknownProductNotFound(t *testing.T) {
	f := newEventFixture(t)
	buyer := f.addUser(t, "buyer")

	_, err := f.service.ToggleSave(context.Background(), buyer, primitive.NewObjectID().Hex())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("error = %v, want NotFound", err)
	}
}
