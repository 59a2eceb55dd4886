package app

import "context"

// Locker serializes mutations so that each one sees the result of the last.
type Locker interface {
	// Lock blocks until the lock is held or ctx is done. The returned func
	// releases it.
	Lock(ctx context.Context) (unlock func(), err error)
}

// LocalLocker is an in-process Locker.
type LocalLocker struct {
	sem chan struct{}
}

// NewLocalLocker creates an unlocked LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{sem: make(chan struct{}, 1)}
}

// Lock implements Locker.
func (l *LocalLocker) Lock(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
