package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/easeaico/tsukuyomi/internal/types"
)

// userMemoryModel maps to the user_memory table.
type userMemoryModel struct {
	UserID    string     `gorm:"column:user_id;primaryKey"`
	Facts     *string    `gorm:"column:facts;type:text"`
	Intimacy  *int       `gorm:"column:intimacy"`
	UpdatedAt *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (userMemoryModel) TableName() string {
	return tableName
}

const postgresSchema = `CREATE TABLE IF NOT EXISTS user_memory (
	user_id    TEXT PRIMARY KEY,
	facts      TEXT,
	intimacy   BIGINT,
	updated_at TIMESTAMPTZ
);`

type postgresStore struct {
	db              *gorm.DB
	defaultIntimacy int
}

// openPostgres connects with gorm. Migrate is left to the caller.
func openPostgres(dsn string, o options) (Backend, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &postgresStore{db: db, defaultIntimacy: o.defaultIntimacy}, nil
}

func (s *postgresStore) Kind() string   { return KindPostgres }
func (s *postgresStore) Schema() string { return postgresSchema }

func (s *postgresStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&userMemoryModel{}); err != nil {
		return fmt.Errorf("failed to migrate user_memory: %w", err)
	}
	return nil
}

func (s *postgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (s *postgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *postgresStore) Load(ctx context.Context, userID string) (*types.UserRecord, error) {
	var rows []userMemoryModel
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&rows)
	if result.Error != nil {
		return nil, storageError("load user memory", result.Error)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	rec := &types.UserRecord{
		UserID:   row.UserID,
		Intimacy: s.defaultIntimacy,
	}
	if row.UpdatedAt != nil {
		rec.UpdatedAt = *row.UpdatedAt
	}
	if row.Intimacy != nil {
		rec.Intimacy = *row.Intimacy
	}
	if row.Facts != nil {
		rec.Facts = decodeFacts(userID, *row.Facts)
	} else {
		rec.Facts = []string{}
	}
	return rec, nil
}

func (s *postgresStore) Save(ctx context.Context, rec *types.UserRecord) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	facts, err := encodeFacts(rec.Facts)
	if err != nil {
		return err
	}
	intimacy := rec.Intimacy
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	row := userMemoryModel{
		UserID:    rec.UserID,
		Facts:     &facts,
		Intimacy:  &intimacy,
		UpdatedAt: &updatedAt,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"facts", "intimacy", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return storageError("save user memory", err)
	}
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&userMemoryModel{}).Error; err != nil {
		return storageError("delete user memory", err)
	}
	return nil
}
