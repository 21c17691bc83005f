package repository

import (
	"jig_platform_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) Create(module *model.Module) error {
	return r.DB.Create(module).Error
}

func (r *ModuleRepository) FindSlot(activityID, moduleID string, slot model.ModuleSlot) (*model.Module, error) {
	var module model.Module
	err := r.DB.Where("activity_id = ? AND module_id = ? AND slot = ?", activityID, moduleID, slot).
		First(&module).Error
	return &module, err
}

func (r *ModuleRepository) ListSlot(activityID string, slot model.ModuleSlot) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Where("activity_id = ? AND slot = ?", activityID, slot).
		Order("position asc").Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) UpdateBody(activityID, moduleID string, slot model.ModuleSlot, updates map[string]interface{}) error {
	res := r.DB.Model(&model.Module{}).
		Where("activity_id = ? AND module_id = ? AND slot = ?", activityID, moduleID, slot).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ModuleRepository) NextPosition(activityID string, slot model.ModuleSlot) (int, error) {
	var max *int
	err := r.DB.Model(&model.Module{}).
		Where("activity_id = ? AND slot = ?", activityID, slot).
		Select("MAX(position)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

func (r *ModuleRepository) Delete(activityID, moduleID string) error {
	return r.DB.Where("activity_id = ? AND module_id = ?", activityID, moduleID).
		Delete(&model.Module{}).Error
}

func (r *ModuleRepository) DeleteByActivity(activityID string) error {
	return r.DB.Where("activity_id = ?", activityID).Delete(&model.Module{}).Error
}
