//go:build !linux

package rtc

import (
	"errors"
	"fmt"
)

// ErrUnsupported — RTC ioctl есть только в Linux.
var ErrUnsupported = errors.New("rtc: not supported on this platform")

// File — заглушка на не-Linux; Open всегда возвращает ErrUnsupported.
type File struct{}

// Open — заглушка на не-Linux.
func Open(path string) (*File, error) {
	return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
}

func (d *File) ReadTime() (Time, error)     { return Time{}, ErrUnsupported }
func (d *File) ReadAlarm() (Alarm, error)   { return Alarm{}, ErrUnsupported }
func (d *File) SetAlarm(a Alarm) error      { return ErrUnsupported }
func (d *File) ReadStatus() (uint64, error) { return 0, ErrUnsupported }
func (d *File) Close() error                { return nil }
