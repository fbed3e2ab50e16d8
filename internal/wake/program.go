package wake

import (
	"fmt"

	"github.com/shiwa/timecard-mini/rtcwake/internal/rtc"
)

// Program ставит будильник на target, сбрасывает буферы ФС и даёт сообщению
// дойти до консоли до начала перехода в сон.
func (r *Runner) Program(dev rtc.Device, p Plan, target int64) error {
	cal, err := rtc.Calendar(target, r.loc(p.Basis))
	if err != nil {
		return fmt.Errorf("wake time: %w", err)
	}
	if err := dev.SetAlarm(rtc.Alarm{Enabled: true, Time: cal}); err != nil {
		return err
	}
	r.Sync()

	r.Log.Printf("wakeup using %q from %s at %s\n", p.Mode, p.Device, r.ctime(target))
	r.Sleep(r.Settle)
	return nil
}
