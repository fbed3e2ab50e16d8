package wake

import (
	"github.com/shiwa/timecard-mini/rtcwake/internal/rtc"
)

// Dispatch выполняет режим после того, как будильник поставлен.
func (r *Runner) Dispatch(dev rtc.Device, p Plan) error {
	switch p.Mode {
	case ModeNo:
		return nil
	case ModeOn:
		return r.waitAlarm(dev, p)
	case ModeOff:
		return r.PowerOff()
	default:
		// EINVAL от ядра — режим не поддерживается
		return r.Power.Enter(string(p.Mode))
	}
}

// waitAlarm читает слово состояния RTC, пока не увидит RTC_AF.
func (r *Runner) waitAlarm(dev rtc.Device, p Plan) error {
	r.Log.Verbosef("Reading RTC...\n")
	for {
		data, err := dev.ReadStatus()
		if err != nil {
			return err
		}
		r.Log.Verbosef("... %s: %x\n", p.Device, data)
		if data&rtc.AlarmFired != 0 {
			return nil
		}
	}
}
