package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jig_platform_backend/internal/body"
	"jig_platform_backend/internal/model"
	"jig_platform_backend/internal/repository"
	"jig_platform_backend/internal/util"
	"jig_platform_backend/pkg/logger"
	"jig_platform_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActivityService struct {
	ActivityRepo *repository.ActivityRepository
	ModuleRepo   *repository.ModuleRepository
	DB           *gorm.DB
	Redis        *redis.Client
}

func NewActivityService(activityRepo *repository.ActivityRepository, moduleRepo *repository.ModuleRepository, db *gorm.DB, rdb *redis.Client) *ActivityService {
	return &ActivityService{
		ActivityRepo: activityRepo,
		ModuleRepo:   moduleRepo,
		DB:           db,
		Redis:        rdb,
	}
}

type CreateActivityInput struct {
	Kind        string   `json:"kind" binding:"required"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Privacy     string   `json:"privacy"`
	ThemeID     string   `json:"theme_id"`
	Categories  []string `json:"categories"`
	AgeRanges   []string `json:"age_ranges"`
}

type UpdateActivityInput struct {
	DisplayName *string  `json:"display_name"`
	Description *string  `json:"description"`
	Language    *string  `json:"language"`
	Privacy     *string  `json:"privacy"`
	ThemeID     *string  `json:"theme_id"`
	Categories  []string `json:"categories"`
	AgeRanges   []string `json:"age_ranges"`
}

// IncompleteModuleError reports which draft module blocked a publish.
type IncompleteModuleError struct {
	ModuleID string
	Kind     string
	Detail   *body.ValidationError
}

func (e *IncompleteModuleError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("module %s (%s) incomplete: %s", e.ModuleID, e.Kind, e.Detail.Reason)
	}
	return fmt.Sprintf("module %s (%s) incomplete", e.ModuleID, e.Kind)
}

func (e *IncompleteModuleError) Unwrap() error {
	return util.ErrActivityIncomplete
}

func (s *ActivityService) Create(creatorID uint, input *CreateActivityInput) (*model.Activity, error) {
	kind := model.AssetKind(input.Kind)
	if !model.AssetKindValid(kind) {
		return nil, fmt.Errorf("unknown asset kind %q", input.Kind)
	}

	activity := &model.Activity{
		Kind:        kind,
		CreatorID:   creatorID,
		DisplayName: input.DisplayName,
		Description: input.Description,
		Language:    input.Language,
		Privacy:     model.Privacy(input.Privacy),
		ThemeID:     input.ThemeID,
	}
	if activity.Language == "" {
		activity.Language = "en"
	}
	if activity.Privacy == "" {
		activity.Privacy = model.PrivacyPrivate
	}
	if input.Categories != nil {
		raw, _ := json.Marshal(input.Categories)
		activity.Categories = datatypes.JSON(raw)
	}
	if input.AgeRanges != nil {
		raw, _ := json.Marshal(input.AgeRanges)
		activity.AgeRanges = datatypes.JSON(raw)
	}

	if err := s.ActivityRepo.Create(activity); err != nil {
		return nil, err
	}
	return activity, nil
}

func (s *ActivityService) Get(id string, slot model.ModuleSlot) (*model.Activity, error) {
	activity, err := s.ActivityRepo.FindByIDWithModules(id, slot)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrActivityNotFound
		}
		return nil, err
	}
	return activity, nil
}

func (s *ActivityService) List(creatorID uint, kind model.AssetKind, page, limit int) ([]model.Activity, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.ActivityRepo.ListByCreator(creatorID, kind, page, limit)
}

func (s *ActivityService) Update(id string, requesterID uint, isAdmin bool, input *UpdateActivityInput) (*model.Activity, error) {
	activity, err := s.ActivityRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrActivityNotFound
		}
		return nil, err
	}
	if activity.CreatorID != requesterID && !isAdmin {
		return nil, util.ErrPermissionDenied
	}

	if input.DisplayName != nil {
		activity.DisplayName = *input.DisplayName
	}
	if input.Description != nil {
		activity.Description = *input.Description
	}
	if input.Language != nil {
		activity.Language = *input.Language
	}
	if input.Privacy != nil {
		activity.Privacy = model.Privacy(*input.Privacy)
	}
	if input.ThemeID != nil {
		activity.ThemeID = *input.ThemeID
	}
	if input.Categories != nil {
		raw, _ := json.Marshal(input.Categories)
		activity.Categories = datatypes.JSON(raw)
	}
	if input.AgeRanges != nil {
		raw, _ := json.Marshal(input.AgeRanges)
		activity.AgeRanges = datatypes.JSON(raw)
	}

	if err := s.ActivityRepo.Update(activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// Publish copies every draft module into its live slot in one transaction.
// Incomplete modules block the whole publish; nothing goes live partially.
func (s *ActivityService) Publish(ctx context.Context, id string, requesterID uint, isAdmin bool) error {
	activity, err := s.ActivityRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrActivityNotFound
		}
		return err
	}
	if activity.CreatorID != requesterID && !isAdmin {
		return util.ErrPermissionDenied
	}

	drafts, err := s.ModuleRepo.ListSlot(id, model.SlotDraft)
	if err != nil {
		return err
	}

	for i := range drafts {
		d := &drafts[i]
		var b body.Body
		if err := json.Unmarshal(d.Body, &b); err != nil {
			return fmt.Errorf("%w: module %s body unreadable", util.ErrActivityIncomplete, d.ModuleID)
		}
		if !b.IsComplete() {
			monitoring.PublishCounter.WithLabelValues("blocked").Inc()
			return &IncompleteModuleError{ModuleID: d.ModuleID, Kind: d.Kind, Detail: b.Validate()}
		}
	}

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ? AND slot = ?", id, model.SlotLive).
			Delete(&model.Module{}).Error; err != nil {
			return err
		}
		for i := range drafts {
			d := &drafts[i]
			live := model.Module{
				ModuleID:   d.ModuleID,
				ActivityID: d.ActivityID,
				Slot:       model.SlotLive,
				Kind:       d.Kind,
				Position:   d.Position,
				IsComplete: d.IsComplete,
				Body:       append(datatypes.JSON(nil), d.Body...),
			}
			if err := tx.Create(&live).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Activity{}).Where("id = ?", id).
			Update("published_at", now).Error
	})
	if err != nil {
		monitoring.PublishCounter.WithLabelValues("error").Inc()
		return err
	}

	monitoring.PublishCounter.WithLabelValues("ok").Inc()
	s.invalidateLive(ctx, id, drafts)
	logger.Log.Info("activity published",
		zap.String("activity_id", id),
		zap.Int("modules", len(drafts)))
	return nil
}

func (s *ActivityService) Delete(id string, requesterID uint, isAdmin bool) error {
	activity, err := s.ActivityRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrActivityNotFound
		}
		return err
	}
	if activity.CreatorID != requesterID && !isAdmin {
		return util.ErrPermissionDenied
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", id).Delete(&model.Module{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", id).Delete(&model.AdditionalResource{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Activity{}).Error
	})
}

func (s *ActivityService) invalidateLive(ctx context.Context, activityID string, modules []model.Module) {
	if s.Redis == nil {
		return
	}
	keys := make([]string, 0, len(modules))
	for i := range modules {
		keys = append(keys, liveCacheKey(activityID, modules[i].ModuleID))
	}
	if len(keys) == 0 {
		return
	}
	if err := s.Redis.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("live cache invalidation failed", zap.Error(err))
	}
}
