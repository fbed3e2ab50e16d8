// Package wake — конвейер rtcwake: разбор режима, сверка часов RTC и системы,
// установка будильника и переход в сон.
//
//	Resolve → Reconcile → Program → Dispatch
//
// Режимы show и disable завершаются в Reconcile (Outcome CompletedEarly).
package wake

import (
	"errors"
	"time"

	"github.com/shiwa/timecard-mini/rtcwake/internal/rtc"
)

// Mode — режим rtcwake. Кроме перечисленных допускается любое состояние,
// которое ядро перечисляет в /sys/power/state.
type Mode string

const (
	ModeDisable Mode = "disable" // отменить будильник
	ModeFreeze  Mode = "freeze"  // заморозить процессы, простой CPU
	ModeDisk    Mode = "disk"    // S4
	ModeMem     Mode = "mem"     // S3
	ModeNo      Mode = "no"      // только поставить будильник
	ModeOff     Mode = "off"     // S5, poweroff
	ModeOn      Mode = "on"      // не спать, ждать срабатывания
	ModeShow    Mode = "show"    // показать будильник
	ModeStandby Mode = "standby" // S1
)

// DefaultMode — режим, если -m не задан.
const DefaultMode = ModeStandby

// relativeMargin добавляется к -s: util-linux делает так же (видно в strace).
const relativeMargin = 1

var (
	// ErrUsage — неверная комбинация аргументов; оборудование не трогали.
	ErrUsage = errors.New("usage")
	// ErrPastWakeTime — время пробуждения не позже текущего времени RTC.
	ErrPastWakeTime = errors.New("wake time already passed")
)

// Request — входные данные одного запуска, как их собрал слой флагов.
// Без UTC и Local basis берётся из adjtime (это и есть -a).
type Request struct {
	Mode    Mode
	Device  string
	Local   bool
	UTC     bool
	Seconds *int64 // -s: секунд от текущего времени RTC
	At      *int64 // -t: секунды Unix по системным часам
}

// Plan — разрешённый запрос, передаётся между стадиями.
type Plan struct {
	Mode    Mode
	Device  string
	Basis   rtc.Basis
	Seconds *int64
	At      *int64
}

// Snapshot — одновременное чтение системных часов и RTC (целые секунды).
type Snapshot struct {
	System int64
	RTC    int64
	Basis  rtc.Basis
}

// Offset — насколько RTC впереди системных часов.
func (s Snapshot) Offset() int64 {
	return s.RTC - s.System
}

// Outcome — продолжать ли конвейер после Reconcile.
type Outcome int

const (
	// Proceed — будильник надо поставить.
	Proceed Outcome = iota
	// CompletedEarly — show/disable уже всё сделали.
	CompletedEarly
)

func unixString(sec int64, loc *time.Location) string {
	return time.Unix(sec, 0).In(loc).Format(time.ANSIC)
}
