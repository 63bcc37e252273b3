package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"notification-dispatch/ddd/application/app"
	"notification-dispatch/ddd/application/cqe"
	"notification-dispatch/pkg/errno"
	"notification-dispatch/pkg/logger"
	"notification-dispatch/pkg/manager"
	"notification-dispatch/pkg/restapi"
	"notification-dispatch/pkg/sse"
)

var (
	dispatchControllerOnce sync.Once
	singletonDispatchCtrl  DispatchController
)

// DispatchControllerPlugin 将分发控制器注册到共享的 manager 中。
type DispatchControllerPlugin struct{}

func (p *DispatchControllerPlugin) Name() string {
	return "dispatchController"
}

func (p *DispatchControllerPlugin) MustCreateController() manager.Controller {
	dispatchControllerOnce.Do(func() {
		singletonDispatchCtrl = &dispatchControllerImpl{
			app: app.DefaultNotificationApp(),
		}
	})
	return singletonDispatchCtrl
}

func init() {
	manager.RegisterControllerPlugin(&DispatchControllerPlugin{})
}

// DispatchController 控制器接口。
type DispatchController interface {
	manager.Controller
	CreateEvent(ctx *gin.Context)
	Dispatch(ctx *gin.Context)
	StatusCounts(ctx *gin.Context)
	List(ctx *gin.Context)
	MarkRead(ctx *gin.Context)
	Stream(ctx *gin.Context)
}

type dispatchControllerImpl struct {
	manager.Controller
	app app.NotificationApp
}

// RegisterOpenApi 暂无开放接口。
func (c *dispatchControllerImpl) RegisterOpenApi(group *gin.RouterGroup) {}

// RegisterInnerApi 注册内部接口（事件生产方与前端网关访问）。
func (c *dispatchControllerImpl) RegisterInnerApi(group *gin.RouterGroup) {
	v1 := group.Group("dispatch/v1/inner")
	{
		v1.POST("/events", c.CreateEvent)
		v1.POST("/dispatch", c.Dispatch)
		v1.GET("/notifications", c.List)
		v1.POST("/notifications/read", c.MarkRead)
		v1.GET("/notifications/stream", c.Stream)
	}
}

func (c *dispatchControllerImpl) RegisterDebugApi(group *gin.RouterGroup) {}

// RegisterOpsApi 注册运维观测接口。
func (c *dispatchControllerImpl) RegisterOpsApi(group *gin.RouterGroup) {
	v1 := group.Group("dispatch/v1")
	{
		v1.GET("/events/status", c.StatusCounts)
	}
}

func (c *dispatchControllerImpl) extractUserUUID(ctx *gin.Context) (string, error) {
	userUUID := ctx.GetHeader("X-User-UUID")
	if userUUID == "" {
		// Fallback for SSE where headers are hard to set; user_uuid can be passed via query.
		userUUID = ctx.Query("user_uuid")
	}
	if userUUID == "" {
		// 本服务不做鉴权，只校验参数是否完整。
		return "", errno.ErrParameterInvalid
	}
	return userUUID, nil
}

// CreateEvent 创建一条通知事件，供内容侧服务调用。
func (c *dispatchControllerImpl) CreateEvent(ctx *gin.Context) {
	var req cqe.CreateEventReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewSimpleBizError(errno.ErrParameterInvalid, err, "body"))
		return
	}
	if !req.Validate() {
		restapi.Failed(ctx, errno.ErrParameterInvalid)
		return
	}
	resp, err := c.app.CreateEvent(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// Dispatch 手动触发一次批量分发，与调度器的 tick 可以安全并发。
func (c *dispatchControllerImpl) Dispatch(ctx *gin.Context) {
	var req cqe.DispatchReq
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			restapi.Failed(ctx, errno.NewSimpleBizError(errno.ErrParameterInvalid, err, "body"))
			return
		}
	}
	resp, err := c.app.Dispatch(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// StatusCounts 返回各状态下的事件数。
func (c *dispatchControllerImpl) StatusCounts(ctx *gin.Context) {
	resp, err := c.app.StatusCounts(ctx.Request.Context())
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// List 列出当前用户的通知列表以及未读数量。
func (c *dispatchControllerImpl) List(ctx *gin.Context) {
	userUUID, err := c.extractUserUUID(ctx)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	var req cqe.ListNotificationsReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		restapi.Failed(ctx, errno.NewSimpleBizError(errno.ErrParameterInvalid, err, "query"))
		return
	}
	resp, err := c.app.ListNotifications(ctx.Request.Context(), userUUID, &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// MarkRead 将指定通知标记为已读。
func (c *dispatchControllerImpl) MarkRead(ctx *gin.Context) {
	userUUID, err := c.extractUserUUID(ctx)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	var req cqe.MarkReadReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewSimpleBizError(errno.ErrParameterInvalid, err, "body"))
		return
	}
	if err := c.app.MarkRead(ctx.Request.Context(), userUUID, &req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, gin.H{"status": "ok"})
}

// Stream establishes an SSE stream for the current user's notifications.
// Frontend should listen for "notification.created"/"notification.unread_count"
// events and refresh accordingly.
func (c *dispatchControllerImpl) Stream(ctx *gin.Context) {
	userUUID, err := c.extractUserUUID(ctx)
	if err != nil {
		// 缺少 user_uuid 视为参数错误，而不是鉴权失败。
		restapi.FailedWithStatus(ctx, errno.ErrParameterInvalid, http.StatusBadRequest)
		return
	}

	// Prepare SSE headers.
	w := ctx.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.WithContext(ctx.Request.Context()).Errorf("dispatch: SSE stream does not support flushing user_uuid=%s", userUUID)
		restapi.FailedWithStatus(ctx, errno.ErrInternalServer, http.StatusInternalServerError)
		return
	}

	events, unsubscribe := sse.DefaultHub().Subscribe(userUUID)
	defer unsubscribe()

	// Initial comment to keep some proxies happy.
	if _, err := w.Write([]byte(": ok\n\n")); err == nil {
		flusher.Flush()
	}

	// Periodic heartbeat to keep long-lived connections from timing out on proxies.
	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	notify := ctx.Request.Context().Done()
	for {
		select {
		case <-notify:
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev.Data)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("event: " + ev.Type + "\n")); err != nil {
				return
			}
			if _, err := w.Write([]byte("data: ")); err != nil {
				return
			}
			if _, err := w.Write(data); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
