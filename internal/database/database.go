package database

import (
	"errors"
	"strings"

	"github.com/campusswap/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func Init(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs the schema migration for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.ListingImage{},
		&models.Chat{},
		&models.ChatParticipant{},
		&models.Message{},
		&models.Rating{},
		&models.Notification{},
		&models.Report{},
	)
}

// Transact runs fn inside a transaction and retries once when the store
// fails transiently (serialization conflict, dropped connection). Domain
// errors and constraint violations are surfaced immediately.
func Transact(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := db.Transaction(fn)
	if err != nil && isTransient(err) {
		return db.Transaction(fn)
	}
	return err
}

// LockForUpdate applies a row-level write lock to the query. SQLite has
// no FOR UPDATE and serializes writers globally, so the clause is only
// emitted on dialects that support it.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func isTransient(err error) bool {
	if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{
		"could not serialize access", // postgres serialization failure (40001)
		"deadlock detected",
		"connection reset",
		"bad connection",
		"database is locked", // sqlite busy, seen under test
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
