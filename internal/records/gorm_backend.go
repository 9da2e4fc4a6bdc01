package records

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"footbrief-api/internal/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserRecord is the postgres row behind the gorm backend. user_id is indexed but
// not unique, mirroring the tabular backends where duplicates can occur.
type UserRecord struct {
	ID              uint      `gorm:"primarykey"`
	UserID          int64     `gorm:"not null;index:idx_user_preferences_user_id"`
	DisplayName     string    `gorm:"type:varchar(255)"`
	SelectedLeagues string    `gorm:"type:text;not null;default:''"`
	IsPremium       bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
}

func (UserRecord) TableName() string {
	return "user_preferences"
}

// RunMigrations creates or updates the user_preferences table
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserRecord{}); err != nil {
		return fmt.Errorf("failed to auto-migrate user_preferences: %w", err)
	}
	return nil
}

// GormBackend stores records in postgres through gorm
type GormBackend struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGormBackend(db *gorm.DB, logger *zap.Logger) *GormBackend {
	return &GormBackend{
		db:     db,
		logger: logger,
	}
}

func (b *GormBackend) Search(ctx context.Context, userID int64) ([]Row, error) {
	var records []UserRecord
	err := b.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search user records: %w", err)
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{
			ID:          strconv.FormatUint(uint64(rec.ID), 10),
			UserID:      rec.UserID,
			DisplayName: rec.DisplayName,
			Leagues:     SplitLeagues(rec.SelectedLeagues),
			Premium:     rec.IsPremium,
			UpdatedAt:   rec.UpdatedAt,
		})
	}
	return rows, nil
}

func (b *GormBackend) Create(ctx context.Context, row Row) error {
	rec := UserRecord{
		UserID:          row.UserID,
		DisplayName:     row.DisplayName,
		SelectedLeagues: JoinLeagues(row.Leagues),
		IsPremium:       row.Premium,
		UpdatedAt:       row.UpdatedAt,
	}
	if err := b.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create user record: %w", err)
	}
	b.logger.Debug("Created user record", zap.Int64("user_id", row.UserID), zap.Uint("record_id", rec.ID))
	return nil
}

func (b *GormBackend) Update(ctx context.Context, id string, row Row) error {
	recordID, err := parseRecordID(id)
	if err != nil {
		return err
	}

	result := b.db.WithContext(ctx).
		Model(&UserRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"user_id":          row.UserID,
			"display_name":     row.DisplayName,
			"selected_leagues": JoinLeagues(row.Leagues),
			"is_premium":       row.Premium,
			"updated_at":       row.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRowNotFound
	}
	return nil
}

func (b *GormBackend) Delete(ctx context.Context, id string) error {
	recordID, err := parseRecordID(id)
	if err != nil {
		return err
	}
	if err := b.db.WithContext(ctx).Delete(&UserRecord{}, recordID).Error; err != nil {
		return fmt.Errorf("failed to delete user record: %w", err)
	}
	return nil
}

func (b *GormBackend) Ping(ctx context.Context) error {
	return database.HealthCheck(ctx, b.db)
}

func parseRecordID(id string) (uint64, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, &MalformedError{Field: "id", Reason: fmt.Sprintf("invalid record id %q", id)}
	}
	return n, nil
}
