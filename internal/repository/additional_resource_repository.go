package repository

import (
	"jig_platform_backend/internal/model"

	"gorm.io/gorm"
)

type AdditionalResourceRepository struct {
	DB *gorm.DB
}

func NewAdditionalResourceRepository(db *gorm.DB) *AdditionalResourceRepository {
	return &AdditionalResourceRepository{DB: db}
}

func (r *AdditionalResourceRepository) Create(res *model.AdditionalResource) error {
	return r.DB.Create(res).Error
}

func (r *AdditionalResourceRepository) FindByID(id string) (*model.AdditionalResource, error) {
	var res model.AdditionalResource
	err := r.DB.Where("id = ?", id).First(&res).Error
	return &res, err
}

func (r *AdditionalResourceRepository) ListByActivity(activityID string) ([]model.AdditionalResource, error) {
	var resources []model.AdditionalResource
	err := r.DB.Where("activity_id = ?", activityID).Order("created_at asc").Find(&resources).Error
	return resources, err
}

func (r *AdditionalResourceRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.AdditionalResource{}).Error
}
