package controller

import (
	"jig_platform_backend/internal/service"
	"jig_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// 上传大小上限
const (
	maxImageSize = 10 << 20
	maxAudioSize = 30 << 20
	maxVideoSize = 200 << 20
	maxResourceSize = 20 << 20
)

type MediaController struct {
	MediaService *service.MediaService
}

func NewMediaController(mediaService *service.MediaService) *MediaController {
	return &MediaController{MediaService: mediaService}
}

// UploadImage godoc
// @Summary 上传图片素材
// @Description 背景图、贴纸 sprite、提示图
// @Tags 素材
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "图片文件"
// @Success 200 {object} util.Response{data=service.MediaUploadResult}
// @Failure 400 {object} util.Response
// @Router /api/media/image [post]
func (c *MediaController) UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if file.Size > maxImageSize {
		util.BadRequest(ctx, "image exceeds 10MB")
		return
	}

	result, err := c.MediaService.UploadImage(ctx.Request.Context(), file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, result)
}

// UploadAudio godoc
// @Summary 上传音频素材
// @Description 指引、反馈、答题音频；统一转码为 mp3
// @Tags 素材
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "音频文件"
// @Success 200 {object} util.Response{data=service.MediaUploadResult}
// @Failure 400 {object} util.Response
// @Router /api/media/audio [post]
func (c *MediaController) UploadAudio(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if file.Size > maxAudioSize {
		util.BadRequest(ctx, "audio exceeds 30MB")
		return
	}

	result, err := c.MediaService.UploadAudio(ctx.Request.Context(), file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, result)
}

// UploadVideo godoc
// @Summary 上传视频素材
// @Description 直传视频贴纸；附带生成封面帧
// @Tags 素材
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "视频文件"
// @Success 200 {object} util.Response{data=service.MediaUploadResult}
// @Failure 400 {object} util.Response
// @Router /api/media/video [post]
func (c *MediaController) UploadVideo(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if file.Size > maxVideoSize {
		util.BadRequest(ctx, "video exceeds 200MB")
		return
	}

	result, err := c.MediaService.UploadVideo(ctx.Request.Context(), file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, result)
}
