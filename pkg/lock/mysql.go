package lock

import (
	"context"
	"database/sql"
	"fmt"

	"notification-dispatch/pkg/logger"

	"gorm.io/gorm"
)

// MySQLProvider implements Provider on top of MySQL GET_LOCK/RELEASE_LOCK.
// GET_LOCK is connection-scoped, so acquire, fn and release all run pinned
// to a single pooled connection.
type MySQLProvider struct {
	db *gorm.DB
}

func NewMySQLProvider(db *gorm.DB) *MySQLProvider {
	return &MySQLProvider{db: db}
}

func (p *MySQLProvider) WithLock(ctx context.Context, name string, fn func() error) (bool, error) {
	key := Key(name)
	acquired := false

	err := p.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		var got sql.NullInt64
		// Zero timeout: try semantics, never queue behind the holder.
		if err := conn.Raw("SELECT GET_LOCK(?, 0)", key).Scan(&got).Error; err != nil {
			return fmt.Errorf("lock: acquire %s: %w", key, err)
		}
		if !got.Valid || got.Int64 != 1 {
			return nil
		}
		acquired = true

		defer func() {
			var released sql.NullInt64
			if err := conn.Raw("SELECT RELEASE_LOCK(?)", key).Scan(&released).Error; err != nil {
				logger.Errorf("lock: release %s failed error=%v", key, err)
			} else if !released.Valid || released.Int64 != 1 {
				logger.Warnf("lock: release %s reported not held", key)
			}
		}()

		return fn()
	})
	return acquired, err
}
