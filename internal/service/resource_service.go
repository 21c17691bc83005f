package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"jig_platform_backend/internal/model"
	"jig_platform_backend/internal/repository"
	"jig_platform_backend/internal/util"

	"gorm.io/gorm"
)

// ResourceService manages the downloadable extras attached to an activity:
// lesson plans, worksheets, external links.
type ResourceService struct {
	ResourceRepo *repository.AdditionalResourceRepository
	ActivityRepo *repository.ActivityRepository
	Storage      *StorageService
}

func NewResourceService(resourceRepo *repository.AdditionalResourceRepository, activityRepo *repository.ActivityRepository, storage *StorageService) *ResourceService {
	return &ResourceService{
		ResourceRepo: resourceRepo,
		ActivityRepo: activityRepo,
		Storage:      storage,
	}
}

type CreateResourceInput struct {
	DisplayName  string `json:"display_name" binding:"required"`
	ResourceType string `json:"resource_type" binding:"required"`
	URL          string `json:"url" binding:"required"`
}

func (s *ResourceService) Create(activityID string, input *CreateResourceInput) (*model.AdditionalResource, error) {
	if _, err := s.ActivityRepo.FindByID(activityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrActivityNotFound
		}
		return nil, err
	}

	rt := model.ResourceType(input.ResourceType)
	if !model.ResourceTypeValid(rt) {
		return nil, fmt.Errorf("unknown resource type %q", input.ResourceType)
	}

	res := &model.AdditionalResource{
		ActivityID:   activityID,
		DisplayName:  input.DisplayName,
		ResourceType: rt,
		URL:          input.URL,
	}
	if err := s.ResourceRepo.Create(res); err != nil {
		return nil, err
	}
	return res, nil
}

// Upload stores an uploaded file as an additional resource; the resource
// type is derived from the sniffed MIME type.
func (s *ResourceService) Upload(ctx context.Context, activityID, displayName string, file *multipart.FileHeader) (*model.AdditionalResource, error) {
	if _, err := s.ActivityRepo.FindByID(activityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrActivityNotFound
		}
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeImage, util.MimeAudio, util.MimePDF})
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, 0); err != nil {
		return nil, err
	}

	var rt model.ResourceType
	switch {
	case util.IsPDF(mimeType):
		rt = model.ResourcePDF
	case util.IsImage(mimeType):
		rt = model.ResourceImage
	case util.IsAudio(mimeType):
		rt = model.ResourceAudio
	default:
		return nil, fmt.Errorf("unsupported resource file type %q", mimeType)
	}

	url, err := s.Storage.Upload(ctx, storedName("resources", file.Filename), src, file.Size, mimeType)
	if err != nil {
		return nil, err
	}

	if displayName == "" {
		displayName = file.Filename
	}
	res := &model.AdditionalResource{
		ActivityID:   activityID,
		DisplayName:  displayName,
		ResourceType: rt,
		URL:          url,
	}
	if err := s.ResourceRepo.Create(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ResourceService) List(activityID string) ([]model.AdditionalResource, error) {
	return s.ResourceRepo.ListByActivity(activityID)
}

func (s *ResourceService) Delete(id string) error {
	if _, err := s.ResourceRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrResourceNotFound
		}
		return err
	}
	return s.ResourceRepo.Delete(id)
}
