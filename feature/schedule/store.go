package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"delivery-tracker/core/database"
	"delivery-tracker/core/reconcile"

	"gorm.io/gorm"
)

// ReconciledItem is one persisted reconciled record.
type ReconciledItem struct {
	ID           uint       `gorm:"primaryKey"`
	RunID        string     `gorm:"column:run_id;size:36;index"`
	Row          int        `gorm:"column:row_index"`
	PrimaryKey   string     `gorm:"column:primary_key;size:128;index"`
	SecondaryKey string     `gorm:"column:secondary_key;size:128;index"`
	Revision     string     `gorm:"column:revision;size:32"`
	LogName      string     `gorm:"column:log_name;size:255"`
	ExpectedDate *time.Time `gorm:"column:expected_date"`
	ActualDate   *time.Time `gorm:"column:actual_date"`
	Delta        *int       `gorm:"column:delta"`
	Fields       string     `gorm:"column:fields;type:text"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
}

// TableName returns the table holding reconciled records.
func (ReconciledItem) TableName() string {
	return "reconciled_items"
}

var requiredColumns = []string{
	"id", "run_id", "row_index", "primary_key", "secondary_key", "revision",
	"log_name", "expected_date", "actual_date", "delta", "fields", "created_at",
}

// DatabaseSink persists results, one row per record tagged with the run id.
type DatabaseSink struct {
	db        *gorm.DB
	batchSize int
}

// NewDatabaseSink returns a sink inserting in batches of batchSize.
func NewDatabaseSink(db *gorm.DB, batchSize int) *DatabaseSink {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &DatabaseSink{db: db, batchSize: batchSize}
}

func (s *DatabaseSink) Name() string {
	return "database " + ReconciledItem{}.TableName()
}

// Migrate creates or updates the table and verifies its columns.
func (s *DatabaseSink) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&ReconciledItem{}); err != nil {
		return fmt.Errorf("migrate %s: %w", ReconciledItem{}.TableName(), err)
	}
	missing, err := database.MissingColumns(db, ReconciledItem{}.TableName(), requiredColumns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns: %s", ReconciledItem{}.TableName(), strings.Join(missing, ", "))
	}
	return nil
}

// Write implements reconcile.Sink. All rows of a run are inserted atomically.
func (s *DatabaseSink) Write(ctx context.Context, res *reconcile.Result) error {
	if len(res.Records) == 0 {
		return nil
	}
	items, err := toItems(res)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).CreateInBatches(&items, s.batchSize).Error
}

// Items returns the rows stored for a run, in record order.
func (s *DatabaseSink) Items(ctx context.Context, runID string) ([]ReconciledItem, error) {
	var items []ReconciledItem
	err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("row_index").Find(&items).Error
	return items, err
}

func toItems(res *reconcile.Result) ([]ReconciledItem, error) {
	now := time.Now()
	items := make([]ReconciledItem, len(res.Records))
	for i, rec := range res.Records {
		fields, err := json.Marshal(rec.Fields)
		if err != nil {
			return nil, fmt.Errorf("encode fields of row %d: %w", rec.Row, err)
		}
		items[i] = ReconciledItem{
			RunID:        res.RunID,
			Row:          rec.Row,
			PrimaryKey:   rec.PrimaryKey,
			SecondaryKey: rec.SecondaryKey,
			Revision:     rec.Revision,
			LogName:      rec.LogName,
			ExpectedDate: rec.ExpectedDate,
			ActualDate:   rec.ActualDate,
			Delta:        rec.Delta,
			Fields:       string(fields),
			CreatedAt:    now,
		}
	}
	return items, nil
}
