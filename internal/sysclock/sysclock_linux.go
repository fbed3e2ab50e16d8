//go:build linux

// Package sysclock — системные часы (CLOCK_REALTIME) и сброс буферов ФС перед сном.
package sysclock

import (
	"time"

	"golang.org/x/sys/unix"
)

// Now читает CLOCK_REALTIME. Если вызов не удался, берётся time.Now.
func Now() time.Time {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return time.Now()
	}
	return time.Unix(ts.Unix())
}

// Sync — sync(2): записать грязные буферы до того, как машина уснёт.
func Sync() {
	unix.Sync()
}
