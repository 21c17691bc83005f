package controller

import (
	"errors"
	"net/http"

	"jig_platform_backend/internal/model"
	"jig_platform_backend/internal/service"
	"jig_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ActivityController struct {
	ActivityService *service.ActivityService
}

func NewActivityController(activityService *service.ActivityService) *ActivityController {
	return &ActivityController{ActivityService: activityService}
}

func requester(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		return 0, false
	}
	return claims.UserID, claims.Role == model.Admin
}

// Create godoc
// @Summary 新建资产 (JIG / 播放列表 / 课程)
// @Tags 资产
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CreateActivityInput true "资产信息"
// @Success 201 {object} util.Response{data=model.Activity}
// @Failure 400 {object} util.Response
// @Router /api/activities [post]
func (c *ActivityController) Create(ctx *gin.Context) {
	var input service.CreateActivityInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	userID, _ := requester(ctx)
	activity, err := c.ActivityService.Create(userID, &input)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, activity)
}

// List godoc
// @Summary 当前用户的资产列表
// @Tags 资产
// @Produce  json
// @Security BearerAuth
// @Param   kind query string false "按种类过滤"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/activities [get]
func (c *ActivityController) List(ctx *gin.Context) {
	userID, _ := requester(ctx)
	kind := model.AssetKind(ctx.Query("kind"))
	page := util.MustParseUint(ctx.DefaultQuery("page", "1"))
	limit := util.MustParseUint(ctx.DefaultQuery("limit", "20"))

	activities, total, err := c.ActivityService.List(userID, kind, int(page), int(limit))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  activities,
		Total: total,
		Page:  int(page),
		Limit: int(limit),
	})
}

// Get godoc
// @Summary 资产详情
// @Description slot=draft 返回编辑视图，slot=live 返回发布视图
// @Tags 资产
// @Produce  json
// @Param   id path string true "资产 ID"
// @Param   slot query string false "draft 或 live，默认 draft"
// @Success 200 {object} util.Response{data=model.Activity}
// @Failure 404 {object} util.Response
// @Router /api/activities/{id} [get]
func (c *ActivityController) Get(ctx *gin.Context) {
	slot := model.ModuleSlot(ctx.DefaultQuery("slot", string(model.SlotDraft)))
	if slot != model.SlotDraft && slot != model.SlotLive {
		util.BadRequest(ctx, "slot must be draft or live")
		return
	}

	activity, err := c.ActivityService.Get(ctx.Param("id"), slot)
	if err != nil {
		if errors.Is(err, util.ErrActivityNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, activity)
}

// Update godoc
// @Summary 更新资产元信息
// @Tags 资产
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "资产 ID"
// @Param   body body service.UpdateActivityInput true "变更字段"
// @Success 200 {object} util.Response{data=model.Activity}
// @Failure 403 {object} util.Response
// @Router /api/activities/{id} [patch]
func (c *ActivityController) Update(ctx *gin.Context) {
	var input service.UpdateActivityInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	userID, isAdmin := requester(ctx)
	activity, err := c.ActivityService.Update(ctx.Param("id"), userID, isAdmin, &input)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrActivityNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, activity)
}

// Publish godoc
// @Summary 发布资产
// @Description 事务性地把所有模块草稿复制到线上槽位；存在未完成模块则整体失败
// @Tags 资产
// @Security BearerAuth
// @Param   asset_kind path string true "资产种类"
// @Param   id path string true "资产 ID"
// @Success 204 "发布成功"
// @Failure 409 {object} object "存在未完成模块"
// @Router /v1/{asset_kind}/{id}/draft/publish [put]
func (c *ActivityController) Publish(ctx *gin.Context) {
	if !model.AssetKindValid(model.AssetKind(ctx.Param("asset_kind"))) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown asset kind"})
		return
	}

	userID, isAdmin := requester(ctx)
	err := c.ActivityService.Publish(ctx.Request.Context(), ctx.Param("id"), userID, isAdmin)
	if err != nil {
		var incomplete *service.IncompleteModuleError
		switch {
		case errors.As(err, &incomplete):
			ctx.JSON(http.StatusConflict, gin.H{
				"error":     "activity has incomplete modules",
				"module_id": incomplete.ModuleID,
				"kind":      incomplete.Kind,
				"detail":    incomplete.Detail,
			})
		case errors.Is(err, util.ErrActivityIncomplete):
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, util.ErrActivityNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
		case errors.Is(err, util.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Delete godoc
// @Summary 删除资产及其全部模块
// @Tags 资产
// @Security BearerAuth
// @Param   id path string true "资产 ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/activities/{id} [delete]
func (c *ActivityController) Delete(ctx *gin.Context) {
	userID, isAdmin := requester(ctx)
	err := c.ActivityService.Delete(ctx.Param("id"), userID, isAdmin)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrActivityNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
