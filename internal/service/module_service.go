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

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const liveBodyCacheTTL = 10 * time.Minute

type ModuleService struct {
	ModuleRepo   *repository.ModuleRepository
	ActivityRepo *repository.ActivityRepository
	DB           *gorm.DB
	Redis        *redis.Client
}

func NewModuleService(moduleRepo *repository.ModuleRepository, activityRepo *repository.ActivityRepository, db *gorm.DB, rdb *redis.Client) *ModuleService {
	return &ModuleService{
		ModuleRepo:   moduleRepo,
		ActivityRepo: activityRepo,
		DB:           db,
		Redis:        rdb,
	}
}

// ModuleView is the wire shape of one module slot.
type ModuleView struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	IsComplete bool            `json:"is_complete"`
	Body       json.RawMessage `json:"body"`
}

func moduleView(m *model.Module) *ModuleView {
	return &ModuleView{
		ID:         m.ModuleID,
		Kind:       m.Kind,
		IsComplete: m.IsComplete,
		Body:       json.RawMessage(m.Body),
	}
}

// decodeBody checks that raw parses as a module body. The editor_state
// inside stays opaque to the server beyond this structural check.
func decodeBody(raw json.RawMessage) (*body.Body, error) {
	var b body.Body
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidBody, err)
	}
	return &b, nil
}

// authorize loads the parent activity and checks that the requester may
// touch its modules. Draft reads and every mutation go through here; only
// the live slot is public.
func (s *ModuleService) authorize(activityID string, requesterID uint, isAdmin bool) (*model.Activity, error) {
	activity, err := s.ActivityRepo.FindByID(activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrActivityNotFound
		}
		return nil, err
	}
	if activity.CreatorID != requesterID && !isAdmin {
		return nil, util.ErrPermissionDenied
	}
	return activity, nil
}

// Create inserts a new draft module at the end of the parent activity.
func (s *ModuleService) Create(parentID string, requesterID uint, isAdmin bool, rawBody json.RawMessage) (string, error) {
	if _, err := s.authorize(parentID, requesterID, isAdmin); err != nil {
		return "", err
	}
	b, err := decodeBody(rawBody)
	if err != nil {
		return "", err
	}

	position, err := s.ModuleRepo.NextPosition(parentID, model.SlotDraft)
	if err != nil {
		return "", err
	}

	module := &model.Module{
		ModuleID:   model.GenerateUUID(),
		ActivityID: parentID,
		Slot:       model.SlotDraft,
		Kind:       string(b.Kind),
		Position:   position,
		IsComplete: b.IsComplete(),
		Body:       datatypes.JSON(rawBody),
	}
	if err := s.ModuleRepo.Create(module); err != nil {
		return "", err
	}
	return module.ModuleID, nil
}

// GetDraft returns the editable slot.
func (s *ModuleService) GetDraft(activityID, moduleID string, requesterID uint, isAdmin bool) (*ModuleView, error) {
	if _, err := s.authorize(activityID, requesterID, isAdmin); err != nil {
		return nil, err
	}
	m, err := s.ModuleRepo.FindSlot(activityID, moduleID, model.SlotDraft)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	return moduleView(m), nil
}

// GetLive returns the published slot, served from the redis cache when warm.
func (s *ModuleService) GetLive(ctx context.Context, activityID, moduleID string) (*ModuleView, error) {
	cacheKey := liveCacheKey(activityID, moduleID)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var view ModuleView
			if err := json.Unmarshal(cached, &view); err == nil {
				return &view, nil
			}
		}
	}

	m, err := s.ModuleRepo.FindSlot(activityID, moduleID, model.SlotLive)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	view := moduleView(m)

	if s.Redis != nil {
		if raw, err := json.Marshal(view); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, raw, liveBodyCacheTTL).Err(); err != nil {
				logger.Log.Warn("live cache set failed", zap.Error(err))
			}
		}
	}
	return view, nil
}

// UpdateDraftBody replaces the draft body. Idempotent: the editor saves the
// same body repeatedly after debounce quiescence.
func (s *ModuleService) UpdateDraftBody(activityID, moduleID string, requesterID uint, isAdmin bool, rawBody json.RawMessage) error {
	if _, err := s.authorize(activityID, requesterID, isAdmin); err != nil {
		return err
	}
	b, err := decodeBody(rawBody)
	if err != nil {
		return err
	}
	return s.ModuleRepo.UpdateBody(activityID, moduleID, model.SlotDraft, map[string]interface{}{
		"body":        datatypes.JSON(rawBody),
		"kind":        string(b.Kind),
		"is_complete": b.IsComplete(),
	})
}

// Clone server-side deep copies a draft module into the target activity
// with fresh ids; both drafts stay independently editable.
func (s *ModuleService) Clone(sourceActivity, sourceModule, targetActivity string, requesterID uint, isAdmin bool) (string, error) {
	// the requester must own both ends of the paste
	if _, err := s.authorize(sourceActivity, requesterID, isAdmin); err != nil {
		return "", err
	}
	if _, err := s.authorize(targetActivity, requesterID, isAdmin); err != nil {
		return "", err
	}
	src, err := s.ModuleRepo.FindSlot(sourceActivity, sourceModule, model.SlotDraft)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrModuleNotFound
		}
		return "", err
	}

	position, err := s.ModuleRepo.NextPosition(targetActivity, model.SlotDraft)
	if err != nil {
		return "", err
	}

	clone := &model.Module{
		ModuleID:   model.GenerateUUID(),
		ActivityID: targetActivity,
		Slot:       model.SlotDraft,
		Kind:       src.Kind,
		Position:   position,
		IsComplete: src.IsComplete,
		Body:       append(datatypes.JSON(nil), src.Body...),
	}
	if err := s.ModuleRepo.Create(clone); err != nil {
		return "", err
	}
	return clone.ModuleID, nil
}

// Delete removes both slots of the module.
func (s *ModuleService) Delete(ctx context.Context, activityID, moduleID string, requesterID uint, isAdmin bool) error {
	if _, err := s.authorize(activityID, requesterID, isAdmin); err != nil {
		return err
	}
	if err := s.ModuleRepo.Delete(activityID, moduleID); err != nil {
		return err
	}
	s.invalidateLive(ctx, activityID, moduleID)
	return nil
}

func (s *ModuleService) invalidateLive(ctx context.Context, activityID, moduleID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, liveCacheKey(activityID, moduleID)).Err(); err != nil {
		logger.Log.Warn("live cache invalidation failed", zap.Error(err))
	}
}

func liveCacheKey(activityID, moduleID string) string {
	return "module:live:" + activityID + ":" + moduleID
}
