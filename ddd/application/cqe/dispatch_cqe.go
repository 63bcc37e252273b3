package cqe

import "time"

// CreateEventReq 创建通知事件请求（内部接口，供内容侧服务调用）。
type CreateEventReq struct {
	Type           string    `json:"type"`
	ContentID      uint64    `json:"content_id"`
	ContentVersion int       `json:"content_version"`
	CategoryID     uint64    `json:"category_id"`
	Tags           []string  `json:"tags,omitempty"`
	Symbols        []string  `json:"symbols,omitempty"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary,omitempty"`
	EffectiveAt    time.Time `json:"effective_at,omitempty"`
}

// Validate 校验必填字段是否完整。
func (r *CreateEventReq) Validate() bool {
	if r == nil {
		return false
	}
	return r.Type != "" && r.ContentID > 0 && r.Title != ""
}

// DispatchReq 手动触发一次批量分发。
type DispatchReq struct {
	BatchSize int `json:"batch_size"`
}

func (r *DispatchReq) Normalize(defaultBatchSize int) {
	if r.BatchSize <= 0 || r.BatchSize > 500 {
		r.BatchSize = defaultBatchSize
	}
}

// ListNotificationsReq 列表查询请求。
type ListNotificationsReq struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

func (r *ListNotificationsReq) Normalize() {
	if r.Page <= 0 {
		r.Page = 1
	}
	if r.PageSize <= 0 || r.PageSize > 100 {
		r.PageSize = 20
	}
}

// MarkReadReq 标记已读请求。
type MarkReadReq struct {
	IDs []uint64 `json:"ids"`
}

func (r *MarkReadReq) Validate() bool {
	return len(r.IDs) > 0
}
