package lock

import (
	"context"

	"notification-dispatch/pkg/encode"
)

// Provider is a cluster-wide named try-lock with scoped acquisition:
// the lock is released on every exit path of fn, including panics
// propagating through it and fn returning an error.
//
// WithLock returns (false, nil) without running fn when the lock is held
// elsewhere; lock-provider I/O failures surface as a non-nil error.
type Provider interface {
	WithLock(ctx context.Context, name string, fn func() error) (acquired bool, err error)
}

// Key derives the fixed store-side lock key from a configured lock name.
// The CRC32 keeps the key short and stable across instances regardless of
// how long the deployment names its dispatch domain.
func Key(name string) string {
	return "notifdispatch:" + encode.Crc32HashCode([]byte(name))
}
