package flagstore

import (
	"context"

	"gorm.io/gorm"
)

type GormFlagStore struct {
	DB *gorm.DB
}

var _ FlagStore = (*GormFlagStore)(nil)

func NewGormFlagStore(db *gorm.DB) (*GormFlagStore, error) {
	if err := db.AutoMigrate(&FlaggedPost{}); err != nil {
		return nil, err
	}
	return &GormFlagStore{DB: db}, nil
}

func (s *GormFlagStore) Add(ctx context.Context, rec *FlaggedPost) error {
	return s.DB.WithContext(ctx).Create(rec).Error
}

func (s *GormFlagStore) Recent(ctx context.Context, limit int) ([]FlaggedPost, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []FlaggedPost
	err := s.DB.WithContext(ctx).Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}
