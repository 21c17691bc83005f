package controller

import (
	"errors"

	"jig_platform_backend/internal/service"
	"jig_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResourceController struct {
	ResourceService *service.ResourceService
}

func NewResourceController(resourceService *service.ResourceService) *ResourceController {
	return &ResourceController{ResourceService: resourceService}
}

// Create godoc
// @Summary 为资产添加附加资料
// @Tags 附加资料
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "资产 ID"
// @Param   body body service.CreateResourceInput true "资料信息"
// @Success 201 {object} util.Response{data=model.AdditionalResource}
// @Router /api/activities/{id}/resources [post]
func (c *ResourceController) Create(ctx *gin.Context) {
	var input service.CreateResourceInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.ResourceService.Create(ctx.Param("id"), &input)
	if err != nil {
		if errors.Is(err, util.ErrActivityNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, res)
}

// Upload godoc
// @Summary 上传附加资料文件（图片 / 音频 / PDF）
// @Tags 附加资料
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "资产 ID"
// @Param   file formData file true "资料文件"
// @Param   display_name formData string false "显示名称"
// @Success 201 {object} util.Response{data=model.AdditionalResource}
// @Router /api/activities/{id}/resources/upload [post]
func (c *ResourceController) Upload(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if file.Size > maxResourceSize {
		util.BadRequest(ctx, "file too large")
		return
	}

	res, err := c.ResourceService.Upload(ctx.Request.Context(), ctx.Param("id"), ctx.PostForm("display_name"), file)
	if err != nil {
		if errors.Is(err, util.ErrActivityNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, res)
}

// List godoc
// @Summary 资产的附加资料列表
// @Tags 附加资料
// @Produce  json
// @Param   id path string true "资产 ID"
// @Success 200 {object} util.Response{data=[]model.AdditionalResource}
// @Router /api/activities/{id}/resources [get]
func (c *ResourceController) List(ctx *gin.Context) {
	resources, err := c.ResourceService.List(ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, resources)
}

// Delete godoc
// @Summary 删除附加资料
// @Tags 附加资料
// @Security BearerAuth
// @Param   resource_id path string true "资料 ID"
// @Success 200 {object} util.Response
// @Router /api/resources/{resource_id} [delete]
func (c *ResourceController) Delete(ctx *gin.Context) {
	if err := c.ResourceService.Delete(ctx.Param("resource_id")); err != nil {
		if errors.Is(err, util.ErrResourceNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
