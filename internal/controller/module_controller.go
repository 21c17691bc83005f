package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"jig_platform_backend/internal/model"
	"jig_platform_backend/internal/service"
	"jig_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ModuleController serves the /v1 module endpoints the editor iframe and
// player talk to. These return the module wire shape directly instead of
// the code/message envelope so clients can decode without unwrapping.
type ModuleController struct {
	ModuleService *service.ModuleService
}

func NewModuleController(moduleService *service.ModuleService) *ModuleController {
	return &ModuleController{ModuleService: moduleService}
}

type createModuleRequest struct {
	ParentID string          `json:"parent_id" binding:"required"`
	Body     json.RawMessage `json:"body" binding:"required"`
}

type updateBodyRequest struct {
	Body json.RawMessage `json:"body" binding:"required"`
}

type cloneModuleRequest struct {
	SourceActivity string `json:"source_activity" binding:"required"`
	SourceModule   string `json:"source_module" binding:"required"`
	TargetActivity string `json:"target_activity" binding:"required"`
}

// GetModule godoc
// @Summary 获取模块草稿或线上内容
// @Tags 模块
// @Produce  json
// @Param   slot path string true "draft 或 live"
// @Param   activity path string true "资产 ID"
// @Param   module path string true "模块 ID"
// @Success 200 {object} object "module 包裹"
// @Failure 404 {object} object
// @Router /v1/module/{slot}/{activity}/{module} [get]
func (c *ModuleController) GetModule(ctx *gin.Context) {
	slot := model.ModuleSlot(ctx.Param("slot"))
	activityID := ctx.Param("activity")
	moduleID := ctx.Param("module")

	var view *service.ModuleView
	var err error
	switch slot {
	case model.SlotDraft:
		// only the live slot is public; drafts belong to their author
		if util.GetUserFromContext(ctx) == nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		userID, isAdmin := requester(ctx)
		view, err = c.ModuleService.GetDraft(activityID, moduleID, userID, isAdmin)
	case model.SlotLive:
		view, err = c.ModuleService.GetLive(ctx.Request.Context(), activityID, moduleID)
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "slot must be draft or live"})
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotFound), errors.Is(err, util.ErrActivityNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "module not found"})
		case errors.Is(err, util.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"module": view})
}

// CreateModule godoc
// @Summary 在资产下新建模块草稿
// @Tags 模块
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Success 201 {object} object "新模块 ID"
// @Router /v1/module [post]
func (c *ModuleController) CreateModule(ctx *gin.Context) {
	var req createModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, isAdmin := requester(ctx)
	id, err := c.ModuleService.Create(req.ParentID, userID, isAdmin, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrActivityNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
		case errors.Is(err, util.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		case errors.Is(err, util.ErrInvalidBody):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"id": id})
}

// UpdateDraft godoc
// @Summary 保存模块草稿
// @Description 幂等；编辑器防抖后重复保存同一内容是正常路径
// @Tags 模块
// @Accept  json
// @Security BearerAuth
// @Success 204 "保存成功"
// @Router /v1/module/draft/{activity}/{module} [patch]
func (c *ModuleController) UpdateDraft(ctx *gin.Context) {
	var req updateBodyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, isAdmin := requester(ctx)
	err := c.ModuleService.UpdateDraftBody(ctx.Param("activity"), ctx.Param("module"), userID, isAdmin, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidBody):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, util.ErrModuleNotFound), errors.Is(err, util.ErrActivityNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "module not found"})
		case errors.Is(err, util.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CloneModule godoc
// @Summary 跨资产复制模块
// @Description 深拷贝草稿到目标资产，返回新模块 ID；两份草稿互不影响
// @Tags 模块
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Success 201 {object} object "新模块 ID"
// @Router /v1/module/clone [post]
func (c *ModuleController) CloneModule(ctx *gin.Context) {
	var req cloneModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, isAdmin := requester(ctx)
	id, err := c.ModuleService.Clone(req.SourceActivity, req.SourceModule, req.TargetActivity, userID, isAdmin)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrActivityNotFound), errors.Is(err, util.ErrModuleNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, util.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"id": id})
}

// DeleteModule godoc
// @Summary 删除模块
// @Tags 模块
// @Security BearerAuth
// @Success 204 "删除成功"
// @Router /v1/module/{activity}/{module} [delete]
func (c *ModuleController) DeleteModule(ctx *gin.Context) {
	userID, isAdmin := requester(ctx)
	err := c.ModuleService.Delete(ctx.Request.Context(), ctx.Param("activity"), ctx.Param("module"), userID, isAdmin)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrActivityNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, util.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	ctx.Status(http.StatusNoContent)
}
