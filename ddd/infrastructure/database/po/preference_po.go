package po

// 匹配模式列取值，与 entity.MatchMode 保持一致。
const (
	MatchModeAll      = "ALL"
	MatchModeCategory = "CATEGORY"
)

// NotificationPreference 持久化对象，对应 notification_preferences 表。
// 本服务只读该表。
type NotificationPreference struct {
	ID       uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	UserUUID string `gorm:"column:user_uuid;uniqueIndex"`
	Enabled  bool   `gorm:"column:enabled"`
	Mode     string `gorm:"column:mode"`
	// CategoryIDs 形如 ",1,5,9," 的逗号包围列表。
	CategoryIDs string `gorm:"column:category_ids"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}
