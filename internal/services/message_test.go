package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/campusswap/backend/internal/events"
	"github.com/campusswap/backend/internal/models"
)

func TestPostMessageRejectsEmptyText(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := createUser(t, env.db, "ana")
	requester := createUser(t, env.db, "bruno")
	listing := createListing(t, env.db, owner.ID, "Python help")
	chat, _ := env.chats.StartOrGetChat(ctx, listing.ID, requester.ID)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := env.messages.PostMessage(ctx, chat.ID, requester.ID, text); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("text %q: expected ErrEmptyMessage, got %v", text, err)
		}
	}
}

func TestPostMessageRejectsNonParticipant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := createUser(t, env.db, "ana")
	requester := createUser(t, env.db, "bruno")
	outsider := createUser(t, env.db, "carla")
	listing := createListing(t, env.db, owner.ID, "Chemistry notes")
	chat, _ := env.chats.StartOrGetChat(ctx, listing.ID, requester.ID)

	if _, err := env.messages.PostMessage(ctx, chat.ID, outsider.ID, "hello"); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
	if _, err := env.messages.PostMessage(ctx, 9999, requester.ID, "hello"); !errors.Is(err, ErrChatNotFound) {
		t.Fatalf("expected ErrChatNotFound, got %v", err)
	}
}

func TestPostMessagePersistsAndFansOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := createUser(t, env.db, "ana")
	requester := createUser(t, env.db, "bruno")
	listing := createListing(t, env.db, owner.ID, "Guitar lessons")
	chat, _ := env.chats.StartOrGetChat(ctx, listing.ID, requester.ID)

	msg, err := env.messages.PostMessage(ctx, chat.ID, requester.ID, "hola")
	if err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}
	if msg.ID == 0 || msg.Text != "hola" || msg.Read {
		t.Errorf("unexpected message row: %+v", msg)
	}

	// durable fan-out: the other participant gets a new_message row
	got := notificationsFor(t, env.db, owner.ID, models.NotificationNewMessage)
	if len(got) != 1 {
		t.Fatalf("expected 1 new_message notification for the owner, got %d", len(got))
	}
	want := fmt.Sprintf("New message in chat %d", chat.ID)
	if got[0].Text != want {
		t.Errorf("notification text = %q, want %q", got[0].Text, want)
	}
	if got := notificationsFor(t, env.db, requester.ID, models.NotificationNewMessage); len(got) != 0 {
		t.Errorf("the author should not be notified, got %d", len(got))
	}

	// best-effort fan-out: a MessagePosted event after commit
	var posted []events.MessagePosted
	for _, e := range env.recorder.all() {
		if m, ok := e.(events.MessagePosted); ok {
			posted = append(posted, m)
		}
	}
	if len(posted) != 1 {
		t.Fatalf("expected 1 MessagePosted event, got %d", len(posted))
	}
	if posted[0].Text != "hola" || posted[0].AuthorAlias != "bruno" || posted[0].ChatID != chat.ID {
		t.Errorf("unexpected event payload: %+v", posted[0])
	}
}

func TestMessagesStayOrderedUnderConcurrentWriters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := createUser(t, env.db, "ana")
	requester := createUser(t, env.db, "bruno")
	listing := createListing(t, env.db, owner.ID, "Chess coaching")
	chat, _ := env.chats.StartOrGetChat(ctx, listing.ID, requester.ID)

	const perWriter = 10
	var wg sync.WaitGroup
	for _, author := range []models.User{owner, requester} {
		wg.Add(1)
		go func(author models.User) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				text := fmt.Sprintf("%s-%d", author.Alias, i)
				if _, err := env.messages.PostMessage(ctx, chat.ID, author.ID, text); err != nil {
					t.Errorf("PostMessage(%s) failed: %v", text, err)
				}
			}
		}(author)
	}
	wg.Wait()

	listed, err := env.messages.ListMessages(ctx, chat.ID, owner.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(listed) != 2*perWriter {
		t.Fatalf("expected %d messages, got %d", 2*perWriter, len(listed))
	}

	for i := 1; i < len(listed); i++ {
		if listed[i].CreatedAt < listed[i-1].CreatedAt {
			t.Fatalf("messages out of order at %d: %s before %s", i, listed[i-1].CreatedAt, listed[i].CreatedAt)
		}
		if listed[i].CreatedAt == listed[i-1].CreatedAt && listed[i].ID < listed[i-1].ID {
			t.Fatalf("tie not broken by id at %d", i)
		}
	}
}

func TestListMessagesAccessControl(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := createUser(t, env.db, "ana")
	requester := createUser(t, env.db, "bruno")
	outsider := createUser(t, env.db, "carla")
	listing := createListing(t, env.db, owner.ID, "Cooking 101")
	chat, _ := env.chats.StartOrGetChat(ctx, listing.ID, requester.ID)
	env.messages.PostMessage(ctx, chat.ID, requester.ID, "first")

	if _, err := env.messages.ListMessages(ctx, chat.ID, outsider.ID); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("outsider: expected ErrNotParticipant, got %v", err)
	}
	if _, err := env.messages.ListMessages(ctx, 9999, requester.ID); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("missing chat: expected ErrChatNotFound, got %v", err)
	}

	listed, err := env.messages.ListMessages(ctx, chat.ID, requester.ID)
	if err != nil {
		t.Fatalf("participant ListMessages failed: %v", err)
	}
	if len(listed) != 1 || listed[0].AuthorAlias != "bruno" {
		t.Errorf("unexpected listing: %+v", listed)
	}
}
