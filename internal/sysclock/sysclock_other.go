//go:build !linux

// Package sysclock — системные часы и сброс буферов ФС перед сном.
package sysclock

import "time"

// Now — time.Now на не-Linux.
func Now() time.Time {
	return time.Now()
}

// Sync — заглушка на не-Linux.
func Sync() {}
