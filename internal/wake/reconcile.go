package wake

import (
	"fmt"

	"github.com/shiwa/timecard-mini/rtcwake/internal/rtc"
)

// Reconcile читает часы, обслуживает show/disable и вычисляет момент
// пробуждения в шкале RTC.
func (r *Runner) Reconcile(dev rtc.Device, p Plan) (int64, Outcome, error) {
	snap, err := r.snapshot(dev, p)
	if err != nil {
		return 0, Proceed, err
	}

	switch p.Mode {
	case ModeShow:
		return 0, CompletedEarly, r.show(dev, p)
	case ModeDisable:
		return 0, CompletedEarly, disable(dev)
	}

	target, err := Target(snap, p)
	if err != nil {
		return 0, Proceed, err
	}
	r.Log.Verbosef("Wake time:\t%d / %s\n", target, r.ctime(target))
	return target, Proceed, nil
}

func (r *Runner) snapshot(dev rtc.Device, p Plan) (Snapshot, error) {
	now := r.Now().Unix()
	rt, err := dev.ReadTime()
	if err != nil {
		return Snapshot{}, err
	}
	inst, err := rtc.Instant(rt, r.loc(p.Basis))
	if err != nil {
		return Snapshot{}, fmt.Errorf("rtc time: %w", err)
	}
	snap := Snapshot{System: now, RTC: inst.Unix(), Basis: p.Basis}
	r.Log.Verbosef("System time:\t%d / %s\n", snap.System, r.ctime(snap.System))
	r.Log.Verbosef("RTC time:\t%d / %s\n", snap.RTC, r.ctime(snap.RTC))
	return snap, nil
}

// Target — момент пробуждения по часам RTC, строго позже rtc.
//
//	-s: rtc + seconds + 1
//	-t: at + (rtc - system)
//
// Если заданы оба, выигрывает -s. Переполнение int64 — rtc.ErrTimeRange.
func Target(s Snapshot, p Plan) (int64, error) {
	var (
		then int64
		ok   bool
		arg  int64
	)
	switch {
	case p.Seconds != nil:
		arg = *p.Seconds
		then, ok = addInt64(s.RTC, arg)
		if ok {
			then, ok = addInt64(then, relativeMargin)
		}
	case p.At != nil:
		arg = *p.At
		// обе величины — показания часов (год в пределах tm_year), разность не переполняется
		then, ok = addInt64(arg, s.Offset())
	default:
		return 0, fmt.Errorf("%w: -m %s needs -s or -t", ErrUsage, p.Mode)
	}
	if !ok {
		return 0, fmt.Errorf("%w: rtc %d + %d", rtc.ErrTimeRange, s.RTC, arg)
	}
	if then <= s.RTC {
		return 0, fmt.Errorf("%w: rtc %d >= %d (requested %d)", ErrPastWakeTime, s.RTC, then, arg)
	}
	return then, nil
}

func addInt64(a, b int64) (int64, bool) {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return 0, false
	}
	return c, true
}

func (r *Runner) show(dev rtc.Device, p Plan) error {
	a, err := dev.ReadAlarm()
	if err != nil {
		return err
	}
	if !a.Enabled {
		r.Log.Printf("alarm: off\n")
		return nil
	}
	then, err := rtc.Instant(a.Time, r.loc(p.Basis))
	if err != nil {
		return fmt.Errorf("alarm time: %w", err)
	}
	r.Log.Printf("alarm: on %s\n", r.ctime(then.Unix()))
	return nil
}

func disable(dev rtc.Device) error {
	a, err := dev.ReadAlarm()
	if err != nil {
		return err
	}
	a.Enabled = false
	return dev.SetAlarm(a)
}
