package wake

import (
	"time"

	"github.com/shiwa/timecard-mini/rtcwake/internal/logger"
	"github.com/shiwa/timecard-mini/rtcwake/internal/power"
	"github.com/shiwa/timecard-mini/rtcwake/internal/rtc"
	"github.com/shiwa/timecard-mini/rtcwake/internal/sysclock"
)

// StateWriter — интерфейс ядра для перехода в сон (power.StateFile).
type StateWriter interface {
	Enter(mode string) error
}

// Runner держит внешние зависимости конвейера. Состояния между запусками нет.
type Runner struct {
	Open     func(path string) (rtc.Device, error)
	Now      func() time.Time
	Local    *time.Location // зона для basis local и для вывода времени
	Adjtime  string
	Sync     func()
	Sleep    func(time.Duration)
	Settle   time.Duration
	Power    StateWriter
	PowerOff func() error
	Log      *logger.Logger
}

// New возвращает Runner с настоящим RTC, системными часами и /sys/power/state.
func New(log *logger.Logger) *Runner {
	return &Runner{
		Open:     openDevice,
		Now:      sysclock.Now,
		Local:    time.Local,
		Adjtime:  rtc.DefaultAdjtime,
		Sync:     sysclock.Sync,
		Sleep:    time.Sleep,
		Settle:   10 * time.Millisecond,
		Power:    power.NewStateFile(""),
		PowerOff: func() error { return power.Exec([]string{"poweroff"}) },
		Log:      log,
	}
}

func openDevice(path string) (rtc.Device, error) {
	f, err := rtc.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *Runner) loc(b rtc.Basis) *time.Location {
	return b.Location(r.Local)
}

func (r *Runner) ctime(sec int64) string {
	loc := r.Local
	if loc == nil {
		loc = time.Local
	}
	return unixString(sec, loc)
}

// Run выполняет весь конвейер. Устройство открывается один раз и закрывается
// на любом пути, кроме успешного off (образ процесса заменён).
func (r *Runner) Run(req Request) error {
	p, err := r.Resolve(req)
	if err != nil {
		return err
	}
	dev, err := r.Open(p.Device)
	if err != nil {
		return err
	}
	defer dev.Close()

	target, outcome, err := r.Reconcile(dev, p)
	if err != nil || outcome == CompletedEarly {
		return err
	}
	if err := r.Program(dev, p, target); err != nil {
		return err
	}
	return r.Dispatch(dev, p)
}
