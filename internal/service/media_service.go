package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"jig_platform_backend/internal/util"
	"jig_platform_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaUploadResult 素材上传结果
type MediaUploadResult struct {
	URL       string          `json:"url"`
	PosterURL string          `json:"poster_url,omitempty"`
	MimeType  string          `json:"mime_type"`
	Info      *util.MediaInfo `json:"info,omitempty"`
}

// MediaService handles asset uploads for the editor: images and sticker
// sprites, recorded audio, and video. Audio is transcoded to mp3 so the
// player mixer only ever loads one codec; video gets a poster frame for
// the preload phase.
type MediaService struct {
	Storage *StorageService
}

func NewMediaService(storage *StorageService) *MediaService {
	return &MediaService{Storage: storage}
}

func (s *MediaService) UploadImage(ctx context.Context, file *multipart.FileHeader) (*MediaUploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeImage})
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, 0); err != nil {
		return nil, err
	}

	filename := storedName("images", file.Filename)
	url, err := s.Storage.Upload(ctx, filename, src, file.Size, mimeType)
	if err != nil {
		return nil, err
	}
	return &MediaUploadResult{URL: url, MimeType: mimeType}, nil
}

func (s *MediaService) UploadAudio(ctx context.Context, file *multipart.FileHeader) (*MediaUploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeAudio, util.MimeVideo, util.MimeOctetStream})
	if err != nil {
		return nil, err
	}
	if util.IsVideo(mimeType) {
		// webm recordings sniff as a video container; the transcode below
		// keeps the audio track only
		logger.Log.Debug("audio upload in video container", zap.String("mime", mimeType))
	}
	if _, err := src.Seek(0, 0); err != nil {
		return nil, err
	}

	tmp, err := saveTemp(src, file.Filename)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)

	mp3Path := strings.TrimSuffix(tmp, filepath.Ext(tmp)) + ".mp3"
	if err := util.TranscodeAudio(tmp, mp3Path); err != nil {
		return nil, fmt.Errorf("audio transcode: %w", err)
	}
	defer os.Remove(mp3Path)

	info, err := util.ProbeMedia(mp3Path)
	if err != nil {
		logger.Log.Warn("audio probe failed", zap.Error(err))
	}

	filename := storedName("audio", strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))+".mp3")
	url, err := s.Storage.UploadFile(ctx, filename, mp3Path, "audio/mpeg")
	if err != nil {
		return nil, err
	}
	return &MediaUploadResult{URL: url, MimeType: "audio/mpeg", Info: info}, nil
}

func (s *MediaService) UploadVideo(ctx context.Context, file *multipart.FileHeader) (*MediaUploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeVideo, util.MimeOctetStream})
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, 0); err != nil {
		return nil, err
	}

	tmp, err := saveTemp(src, file.Filename)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)

	info, err := util.ProbeMedia(tmp)
	if err != nil {
		logger.Log.Warn("video probe failed", zap.Error(err))
	}

	filename := storedName("video", file.Filename)
	url, err := s.Storage.UploadFile(ctx, filename, tmp, mimeType)
	if err != nil {
		return nil, err
	}
	result := &MediaUploadResult{URL: url, MimeType: mimeType, Info: info}

	posterTmp := strings.TrimSuffix(tmp, filepath.Ext(tmp)) + "_poster.jpg"
	if err := util.GeneratePosterFrame(tmp, posterTmp, "00:00:01"); err != nil {
		logger.Log.Warn("poster frame failed", zap.Error(err))
		return result, nil
	}
	defer os.Remove(posterTmp)

	posterName := strings.TrimSuffix(filename, filepath.Ext(filename)) + "_poster.jpg"
	posterURL, err := s.Storage.UploadFile(ctx, posterName, posterTmp, "image/jpeg")
	if err != nil {
		logger.Log.Warn("poster upload failed", zap.Error(err))
		return result, nil
	}
	result.PosterURL = posterURL
	return result, nil
}

func storedName(prefix, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return prefix + "/" + uuid.New().String() + ext
}

func saveTemp(src multipart.File, original string) (string, error) {
	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(original))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := tmp.ReadFrom(src); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
