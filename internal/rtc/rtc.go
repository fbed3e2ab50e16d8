// Package rtc — аппаратные часы реального времени (/dev/rtcN): чтение времени,
// чтение и установка будильника, ожидание срабатывания.
//
// Регистры RTC хранят разложенное календарное время без зоны; как его понимать
// (UTC или локальное время) решает Basis.
package rtc

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultDevice — первый RTC в системе.
const DefaultDevice = "/dev/rtc0"

// AlarmFired — бит RTC_AF в слове состояния, которое возвращает read(2) с устройства.
const AlarmFired = 0x20

// ErrTimeRange — календарное время не переводится в момент времени или обратно.
var ErrTimeRange = errors.New("time out of range")

// Basis — как интерпретировать регистры RTC.
type Basis int

const (
	// UTC — RTC идёт по UTC.
	UTC Basis = iota
	// Local — RTC идёт по локальному времени.
	Local
)

func (b Basis) String() string {
	if b == UTC {
		return "UTC"
	}
	return "local"
}

// Location возвращает зону для basis; local — зона системы (обычно time.Local).
func (b Basis) Location(local *time.Location) *time.Location {
	if b == UTC {
		return time.UTC
	}
	if local == nil {
		return time.Local
	}
	return local
}

// Time — разложенное календарное время, как в struct rtc_time, но с Month 1..12
// и полным годом.
type Time struct {
	Year  int
	Month time.Month
	Day   int
	Hour  int
	Min   int
	Sec   int
}

func (t Time) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", t.Year, int(t.Month), t.Day, t.Hour, t.Min, t.Sec)
}

// Alarm — struct rtc_wkalrm.
type Alarm struct {
	Enabled bool
	Pending bool
	Time    Time
}

// Device — открытый RTC. Реализация для Linux — File.
type Device interface {
	ReadTime() (Time, error)
	ReadAlarm() (Alarm, error)
	SetAlarm(a Alarm) error
	// ReadStatus блокируется до следующего прерывания RTC и возвращает слово состояния.
	ReadStatus() (uint64, error)
	Close() error
}

// Instant переводит календарное время в момент по зоне loc.
// Поля вне допустимых диапазонов (например, -1 у «неважных» полей будильника) — ErrTimeRange.
func Instant(t Time, loc *time.Location) (time.Time, error) {
	if t.Month < time.January || t.Month > time.December ||
		t.Day < 1 || t.Day > 31 ||
		t.Hour < 0 || t.Hour > 23 ||
		t.Min < 0 || t.Min > 59 ||
		t.Sec < 0 || t.Sec > 60 {
		return time.Time{}, fmt.Errorf("%w: %s", ErrTimeRange, t)
	}
	return time.Date(t.Year, t.Month, t.Day, t.Hour, t.Min, t.Sec, 0, loc), nil
}

// Calendar переводит секунды Unix в календарное время по зоне loc.
// Год должен помещаться в tm_year (int32, отсчёт от 1900).
func Calendar(sec int64, loc *time.Location) (Time, error) {
	tm := time.Unix(sec, 0).In(loc)
	y := int64(tm.Year()) - 1900
	if y < math.MinInt32 || y > math.MaxInt32 {
		return Time{}, fmt.Errorf("%w: %d", ErrTimeRange, sec)
	}
	return Time{
		Year:  tm.Year(),
		Month: tm.Month(),
		Day:   tm.Day(),
		Hour:  tm.Hour(),
		Min:   tm.Minute(),
		Sec:   tm.Second(),
	}, nil
}
