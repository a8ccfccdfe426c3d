package scan

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mirai-garden/plant-backend/internal/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Plant{})
}

// Create inserts a new record. It never overwrites: an existing record with the
// same owner and id yields ErrScanExists.
func (s *Store) Create(ctx context.Context, p *Plant) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(p)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrScanExists
	}
	return nil
}

// GetForUser returns the record only when it belongs to userID.
func (s *Store) GetForUser(ctx context.Context, userID, id string) (*Plant, error) {
	var p Plant
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser returns a user's records, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]*Plant, error) {
	var plants []*Plant
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&plants).Error
	return plants, err
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	result := s.db.WithContext(ctx).Delete(&Plant{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
