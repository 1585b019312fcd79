package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/campusswap/backend/internal/models"
)

func TestNotificationTemplates(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)

	user := createUser(t, db, "ana")
	listing := createListing(t, db, user.ID, "Guitar lessons")

	if err := svc.ChatStarted(db, user.ID, 7, &listing); err != nil {
		t.Fatalf("ChatStarted failed: %v", err)
	}
	if err := svc.MessagePosted(db, user.ID, 7); err != nil {
		t.Fatalf("MessagePosted failed: %v", err)
	}
	if err := svc.ExchangeCompleted(db, user.ID, 7); err != nil {
		t.Fatalf("ExchangeCompleted failed: %v", err)
	}
	if err := svc.RatingReceived(db, user.ID, 7, 3, "bruno"); err != nil {
		t.Fatalf("RatingReceived failed: %v", err)
	}

	want := map[string]string{
		models.NotificationNewChat:           "New chat about your listing 'Guitar lessons'",
		models.NotificationNewMessage:        "New message in chat 7",
		models.NotificationExchangeCompleted: "The exchange for chat 7 was marked complete",
		models.NotificationRatingReceived:    "bruno rated chat 7",
	}
	for kind, text := range want {
		got := notificationsFor(t, db, user.ID, kind)
		if len(got) != 1 {
			t.Fatalf("%s: expected 1 notification, got %d", kind, len(got))
		}
		if got[0].Text != text {
			t.Errorf("%s text = %q, want %q", kind, got[0].Text, text)
		}
		if got[0].Read {
			t.Errorf("%s: new notification should be unread", kind)
		}
	}
}

func TestNotificationsAreAnEventLogNotADedupCache(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)

	user := createUser(t, db, "ana")

	// the same event twice yields two distinct rows
	if err := svc.MessagePosted(db, user.ID, 7); err != nil {
		t.Fatalf("MessagePosted failed: %v", err)
	}
	if err := svc.MessagePosted(db, user.ID, 7); err != nil {
		t.Fatalf("MessagePosted failed: %v", err)
	}

	got := notificationsFor(t, db, user.ID, models.NotificationNewMessage)
	if len(got) != 2 {
		t.Fatalf("expected 2 notification rows, got %d", len(got))
	}
	if got[0].ID == got[1].ID {
		t.Error("expected distinct notification rows")
	}
}

func TestMarkReadIsOneWayAndOwnerScoped(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	user := createUser(t, db, "ana")
	stranger := createUser(t, db, "bruno")

	if err := svc.MessagePosted(db, user.ID, 7); err != nil {
		t.Fatalf("MessagePosted failed: %v", err)
	}
	created := notificationsFor(t, db, user.ID, models.NotificationNewMessage)[0]

	// another user cannot mark it
	if _, err := svc.MarkRead(ctx, created.ID, stranger.ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("stranger MarkRead: expected ErrNotificationNotFound, got %v", err)
	}

	marked, err := svc.MarkRead(ctx, created.ID, user.ID)
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if !marked.Read {
		t.Fatal("notification should be read")
	}

	// marking again is a no-op success, never a reset
	again, err := svc.MarkRead(ctx, created.ID, user.ID)
	if err != nil {
		t.Fatalf("repeated MarkRead failed: %v", err)
	}
	if !again.Read {
		t.Error("read flag must stay set")
	}
}

func TestMarkAllReadCountsUpdatedRows(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	user := createUser(t, db, "ana")
	other := createUser(t, db, "bruno")

	for i := 0; i < 3; i++ {
		if err := svc.MessagePosted(db, user.ID, uint(10+i)); err != nil {
			t.Fatalf("MessagePosted failed: %v", err)
		}
	}
	if err := svc.MessagePosted(db, other.ID, 99); err != nil {
		t.Fatalf("MessagePosted failed: %v", err)
	}

	count, err := svc.MarkAllRead(ctx, user.ID)
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 rows updated, got %d", count)
	}

	// idempotent: nothing left to update
	count, err = svc.MarkAllRead(ctx, user.ID)
	if err != nil {
		t.Fatalf("second MarkAllRead failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 rows updated, got %d", count)
	}

	// the other user's notifications are untouched
	left := notificationsFor(t, db, other.ID, models.NotificationNewMessage)
	if len(left) != 1 || left[0].Read {
		t.Errorf("other user's notification should remain unread: %+v", left)
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	user := createUser(t, db, "ana")
	for i := 0; i < 5; i++ {
		if err := svc.MessagePosted(db, user.ID, uint(i+1)); err != nil {
			t.Fatalf("MessagePosted failed: %v", err)
		}
	}

	listed, err := svc.List(ctx, user.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 5 {
		t.Fatalf("expected 5 notifications, got %d", len(listed))
	}
	for i := 1; i < len(listed); i++ {
		if listed[i].ID > listed[i-1].ID {
			t.Fatalf("expected newest first, got id %d before %d", listed[i-1].ID, listed[i].ID)
		}
	}

	want := fmt.Sprintf("New message in chat %d", 5)
	if listed[0].Text != want {
		t.Errorf("newest notification text = %q, want %q", listed[0].Text, want)
	}
}
