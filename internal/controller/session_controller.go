package controller

import (
	"jig_platform_backend/internal/service"
	"jig_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	Hub *service.SessionHub
}

func NewSessionController(hub *service.SessionHub) *SessionController {
	return &SessionController{Hub: hub}
}

// Connect godoc
// @Summary 加入模块编辑会话
// @Description 升级为 WebSocket；消息为 {kind,data} 信封，原样转发给同一草稿的其他参与者
// @Tags 会话
// @Security BearerAuth
// @Param   activity path string true "资产 ID"
// @Param   module path string true "模块 ID"
// @Router /api/session/{activity}/{module} [get]
func (c *SessionController) Connect(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	room := service.SessionRoomKey(ctx.Param("activity"), ctx.Param("module"))
	service.ServeSessionWs(c.Hub, ctx.Writer, ctx.Request, claims.UserID, room)
}

// Participants godoc
// @Summary 当前会话参与人数
// @Tags 会话
// @Produce  json
// @Param   activity path string true "资产 ID"
// @Param   module path string true "模块 ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/session/{activity}/{module}/participants [get]
func (c *SessionController) Participants(ctx *gin.Context) {
	room := service.SessionRoomKey(ctx.Param("activity"), ctx.Param("module"))
	util.Success(ctx, gin.H{"participants": c.Hub.Participants(room)})
}
