package entity

// MatchMode 订阅匹配模式。
type MatchMode string

const (
	// MatchModeAll 订阅全部事件。
	MatchModeAll MatchMode = "ALL"
	// MatchModeCategory 仅订阅指定分类下的事件。
	MatchModeCategory MatchMode = "CATEGORY"
)

// NotificationPreference 用户通知偏好，扇出匹配的输入。
// 本服务只读取该表，写入由用户侧服务负责。
type NotificationPreference struct {
	ID       uint64
	UserUUID string
	Enabled  bool
	Mode     MatchMode
	// CategoryIDs 以逗号包围的分类 ID 列表，形如 ",1,5,9,"，
	// 便于存储层用 LIKE 做包含匹配。
	CategoryIDs string
}
