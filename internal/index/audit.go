package index

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ChrisgKent/primal-page/internal/errors"
)

// BuildRecord is one row of the index build audit log. Forced republications
// are only ever explicit operator actions, so the log is the audit trail the
// immutability override requires.
type BuildRecord struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"index"`
	Commit    string
	Forced    bool
	Outcome   string // published or rejected
	Schemes   int
}

// AuditLog records index builds in a local sqlite database
type AuditLog struct {
	db *gorm.DB
}

// OpenAuditLog opens (and migrates) the audit database at path
func OpenAuditLog(path string) (*AuditLog, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Newf("opening audit database %s: %w", path, err).
			Component("index").
			Category(errors.CategoryDatabase).
			FileContext(path).
			Build()
	}
	if err := db.AutoMigrate(&BuildRecord{}); err != nil {
		return nil, errors.Newf("migrating audit database: %w", err).
			Component("index").
			Category(errors.CategoryDatabase).
			Build()
	}
	return &AuditLog{db: db}, nil
}

// Record appends one build record
func (a *AuditLog) Record(rec BuildRecord) error {
	if err := a.db.Create(&rec).Error; err != nil {
		return errors.Newf("recording index build: %w", err).
			Component("index").
			Category(errors.CategoryDatabase).
			Build()
	}
	return nil
}

// History returns the most recent limit build records, newest first
func (a *AuditLog) History(limit int) ([]BuildRecord, error) {
	var records []BuildRecord
	if err := a.db.Order("created_at desc, id desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, errors.Newf("reading audit history: %w", err).
			Component("index").
			Category(errors.CategoryDatabase).
			Build()
	}
	return records, nil
}
