//go:build linux

package rtc

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// File — RTC через ioctl (include/uapi/linux/rtc.h).
type File struct {
	f    *os.File
	path string
}

// Open открывает RTC на чтение и запись.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &File{f: f, path: path}, nil
}

func (d *File) fd() int {
	return int(d.f.Fd())
}

// ReadTime — RTC_RD_TIME.
func (d *File) ReadTime() (Time, error) {
	rt, err := unix.IoctlGetRTCTime(d.fd())
	if err != nil {
		return Time{}, fmt.Errorf("RTC_RD_TIME %s: %w", d.path, err)
	}
	return fromRTCTime(rt), nil
}

// ReadAlarm — RTC_WKALM_RD.
func (d *File) ReadAlarm() (Alarm, error) {
	wk, err := unix.IoctlGetRTCWkAlrm(d.fd())
	if err != nil {
		return Alarm{}, fmt.Errorf("RTC_WKALM_RD %s: %w", d.path, err)
	}
	return Alarm{
		Enabled: wk.Enabled != 0,
		Pending: wk.Pending != 0,
		Time:    fromRTCTime(&wk.Time),
	}, nil
}

// SetAlarm — RTC_WKALM_SET.
func (d *File) SetAlarm(a Alarm) error {
	wk := unix.RTCWkAlrm{Time: toRTCTime(a.Time)}
	if a.Enabled {
		wk.Enabled = 1
	}
	if a.Pending {
		wk.Pending = 1
	}
	if err := unix.IoctlSetRTCWkAlrm(d.fd(), &wk); err != nil {
		return fmt.Errorf("RTC_WKALM_SET %s: %w", d.path, err)
	}
	return nil
}

// ReadStatus читает unsigned long: младший байт — флаги (RTC_AF, RTC_UF, ...),
// остальное — число прерываний с прошлого чтения.
func (d *File) ReadStatus() (uint64, error) {
	buf := make([]byte, strconv.IntSize/8)
	n, err := d.f.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", d.path, err)
	}
	if n != len(buf) {
		return 0, fmt.Errorf("read %s: %w", d.path, io.ErrShortBuffer)
	}
	if len(buf) == 4 {
		return uint64(binary.NativeEndian.Uint32(buf)), nil
	}
	return binary.NativeEndian.Uint64(buf), nil
}

// Close закрывает устройство.
func (d *File) Close() error {
	return d.f.Close()
}

func fromRTCTime(rt *unix.RTCTime) Time {
	return Time{
		Year:  int(rt.Year) + 1900,
		Month: time.Month(rt.Mon + 1),
		Day:   int(rt.Mday),
		Hour:  int(rt.Hour),
		Min:   int(rt.Min),
		Sec:   int(rt.Sec),
	}
}

// toRTCTime заполняет поля, которые читает драйвер; wday/yday/isdst = -1, как у «неизвестных».
func toRTCTime(t Time) unix.RTCTime {
	return unix.RTCTime{
		Sec:   int32(t.Sec),
		Min:   int32(t.Min),
		Hour:  int32(t.Hour),
		Mday:  int32(t.Day),
		Mon:   int32(t.Month) - 1,
		Year:  int32(t.Year - 1900),
		Wday:  -1,
		Yday:  -1,
		Isdst: -1,
	}
}
