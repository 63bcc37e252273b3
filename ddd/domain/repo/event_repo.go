package repo

import (
	"context"
	"time"

	"notification-dispatch/ddd/domain/entity"
)

// EventRepository 通知事件仓储接口，隐藏具体持久化实现。
//
// Claim/MarkSent/MarkFailed 都是带状态谓词的条件更新，返回实际影响的
// 行数：0 表示另一个调用方已经抢先完成迁移（或事件不满足条件），调用方
// 据此实现无锁的跨进程互斥。
type EventRepository interface {
	Insert(ctx context.Context, ev *entity.NotificationEvent) error
	// Claim 尝试把事件从 PENDING 迁移到 PROCESSING 并把 attempts 加一。
	// 仅当当前状态仍为 PENDING 且 effective_at 已到期时生效。
	Claim(ctx context.Context, eventID uint64, now time.Time) (int64, error)
	// MarkSent 将 PROCESSING 事件标记为 SENT。
	MarkSent(ctx context.Context, eventID uint64, now time.Time) (int64, error)
	// MarkFailed 将 PROCESSING 事件标记为 FAILED 并记录失败原因。
	MarkFailed(ctx context.Context, eventID uint64, reason string, now time.Time) (int64, error)
	// FindForDispatch 加载分发所需的完整事件，未找到时返回 (nil, nil)。
	FindForDispatch(ctx context.Context, eventID uint64) (*entity.NotificationEvent, error)
	// SelectPending 按 effective_at 升序选出最多 limit 条可分发事件。
	SelectPending(ctx context.Context, limit int, now time.Time) ([]*entity.NotificationEvent, error)
	CountByStatus(ctx context.Context, status entity.EventStatus) (int64, error)
	// RequeueStale 将在 before 之前被 claim 且仍停留在 PROCESSING 的
	// 事件重置回 PENDING，返回被重置的行数。
	RequeueStale(ctx context.Context, before time.Time) (int64, error)
}
