package repository

import (
	"time"

	"jig_platform_backend/internal/model"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Create(activity *model.Activity) error {
	return r.DB.Create(activity).Error
}

func (r *ActivityRepository) Update(activity *model.Activity) error {
	return r.DB.Save(activity).Error
}

func (r *ActivityRepository) FindByID(id string) (*model.Activity, error) {
	var activity model.Activity
	err := r.DB.Where("id = ?", id).First(&activity).Error
	return &activity, err
}

func (r *ActivityRepository) FindByIDWithModules(id string, slot model.ModuleSlot) (*model.Activity, error) {
	var activity model.Activity
	err := r.DB.Where("id = ?", id).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Where("slot = ?", slot).Order("position asc")
		}).
		First(&activity).Error
	return &activity, err
}

func (r *ActivityRepository) ListByCreator(creatorID uint, kind model.AssetKind, page, limit int) ([]model.Activity, int64, error) {
	var activities []model.Activity
	var total int64
	query := r.DB.Model(&model.Activity{}).Where("creator_id = ?", creatorID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&activities).Error
	return activities, total, err
}

func (r *ActivityRepository) SetPublishedAt(id string, at time.Time) error {
	return r.DB.Model(&model.Activity{}).Where("id = ?", id).
		Update("published_at", at).Error
}

func (r *ActivityRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Activity{}).Error
}
