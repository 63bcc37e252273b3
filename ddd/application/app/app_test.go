package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"notification-dispatch/ddd/domain/entity"
	drepo "notification-dispatch/ddd/domain/repo"
	"notification-dispatch/ddd/infrastructure/database/po"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&po.NotificationEvent{},
		&po.UserNotification{},
		&po.NotificationPreference{},
	))
	return db
}

// recordingPusher captures live push calls for assertions.
type recordingPusher struct {
	mu      sync.Mutex
	created []string
	counts  map[string]int64
}

func newRecordingPusher() *recordingPusher {
	return &recordingPusher{counts: map[string]int64{}}
}

func (p *recordingPusher) SendCreated(userUUID string, data map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, userUUID)
}

func (p *recordingPusher) SendUnreadCount(userUUID string, count int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[userUUID] = count
}

func (p *recordingPusher) createdUsers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.created...)
}

func (p *recordingPusher) unreadCount(userUUID string) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.counts[userUUID]
	return c, ok
}

// fakeEventRepo overrides selected operations; unset funcs panic so a
// test never silently exercises an unintended path.
type fakeEventRepo struct {
	claimFn      func(ctx context.Context, eventID uint64, now time.Time) (int64, error)
	findFn       func(ctx context.Context, eventID uint64) (*entity.NotificationEvent, error)
	markSentFn   func(ctx context.Context, eventID uint64, now time.Time) (int64, error)
	markFailedFn func(ctx context.Context, eventID uint64, reason string, now time.Time) (int64, error)
	selectFn     func(ctx context.Context, limit int, now time.Time) ([]*entity.NotificationEvent, error)
	requeueFn    func(ctx context.Context, before time.Time) (int64, error)
}

var _ drepo.EventRepository = (*fakeEventRepo)(nil)

func (f *fakeEventRepo) Insert(ctx context.Context, ev *entity.NotificationEvent) error {
	panic("unexpected Insert")
}

func (f *fakeEventRepo) Claim(ctx context.Context, eventID uint64, now time.Time) (int64, error) {
	return f.claimFn(ctx, eventID, now)
}

func (f *fakeEventRepo) MarkSent(ctx context.Context, eventID uint64, now time.Time) (int64, error) {
	return f.markSentFn(ctx, eventID, now)
}

func (f *fakeEventRepo) MarkFailed(ctx context.Context, eventID uint64, reason string, now time.Time) (int64, error) {
	return f.markFailedFn(ctx, eventID, reason, now)
}

func (f *fakeEventRepo) FindForDispatch(ctx context.Context, eventID uint64) (*entity.NotificationEvent, error) {
	return f.findFn(ctx, eventID)
}

func (f *fakeEventRepo) SelectPending(ctx context.Context, limit int, now time.Time) ([]*entity.NotificationEvent, error) {
	return f.selectFn(ctx, limit, now)
}

func (f *fakeEventRepo) CountByStatus(ctx context.Context, status entity.EventStatus) (int64, error) {
	panic("unexpected CountByStatus")
}

func (f *fakeEventRepo) RequeueStale(ctx context.Context, before time.Time) (int64, error) {
	return f.requeueFn(ctx, before)
}

// fakeFanoutRepo follows the same contract as fakeEventRepo.
type fakeFanoutRepo struct {
	insertFn func(ctx context.Context, ev *entity.NotificationEvent, now time.Time) (int64, error)
}

var _ drepo.FanoutRepository = (*fakeFanoutRepo)(nil)

func (f *fakeFanoutRepo) InsertForEvent(ctx context.Context, ev *entity.NotificationEvent, now time.Time) (int64, error) {
	return f.insertFn(ctx, ev, now)
}

func (f *fakeFanoutRepo) FindByEvent(ctx context.Context, eventID uint64) ([]*entity.UserNotification, error) {
	return nil, nil
}

func (f *fakeFanoutRepo) CountUnreadByUsers(ctx context.Context, userUUIDs []string) (map[string]int64, error) {
	return nil, nil
}

func (f *fakeFanoutRepo) ListByUser(ctx context.Context, userUUID string, offset, limit int) ([]*entity.UserNotificationDetail, error) {
	panic("unexpected ListByUser")
}

func (f *fakeFanoutRepo) CountUnread(ctx context.Context, userUUID string) (int64, error) {
	panic("unexpected CountUnread")
}

func (f *fakeFanoutRepo) MarkRead(ctx context.Context, userUUID string, ids []uint64) error {
	panic("unexpected MarkRead")
}
