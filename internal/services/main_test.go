package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/campusswap/backend/internal/database"
	"github.com/campusswap/backend/internal/events"
	"github.com/campusswap/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database per test. A single
// pooled connection keeps sqlite's writer model out of the way so
// concurrent test goroutines serialize the same way postgres row locks
// would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, alias string) models.User {
	t.Helper()

	user := models.User{
		Email:    fmt.Sprintf("%s@campus.test", alias),
		Password: "password123",
		Alias:    alias,
		Role:     "student",
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", alias, err)
	}
	return user
}

func createListing(t *testing.T, db *gorm.DB, ownerID uint, title string) models.Listing {
	t.Helper()

	listing := models.Listing{
		Title:       title,
		Description: "test listing",
		SkillTag:    "testing",
		OwnerID:     ownerID,
		IsActive:    true,
	}
	if err := db.Create(&listing).Error; err != nil {
		t.Fatalf("failed to create listing %q: %v", title, err)
	}
	return listing
}

// eventRecorder captures bus events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func newRecordedBus() (*events.Bus, *eventRecorder) {
	bus := events.NewBus()
	rec := &eventRecorder{}
	bus.Subscribe(func(e events.Event) {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.events = append(rec.events, e)
	})
	return bus, rec
}

func (r *eventRecorder) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// testEnv bundles the services wired the way routes.SetupRoutes does.
type testEnv struct {
	db            *gorm.DB
	bus           *events.Bus
	recorder      *eventRecorder
	notifications *NotificationService
	chats         *ChatService
	messages      *MessageService
	ratings       *RatingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	bus, rec := newRecordedBus()
	notifications := NewNotificationService(db)

	return &testEnv{
		db:            db,
		bus:           bus,
		recorder:      rec,
		notifications: notifications,
		chats:         NewChatService(db, notifications, bus),
		messages:      NewMessageService(db, notifications, bus),
		ratings:       NewRatingService(db, notifications, bus),
	}
}

func notificationsFor(t *testing.T, db *gorm.DB, userID uint, kind string) []models.Notification {
	t.Helper()

	var out []models.Notification
	err := db.Where("recipient_id = ? AND kind = ?", userID, kind).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		t.Fatalf("failed to load notifications: %v", err)
	}
	return out
}
