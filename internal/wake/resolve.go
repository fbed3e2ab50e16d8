package wake

import (
	"github.com/shiwa/timecard-mini/rtcwake/internal/rtc"
)

// Resolve выбирает basis, устройство и режим. Взаимоисключение -a/-l/-u
// проверяет слой флагов.
func (r *Runner) Resolve(req Request) (Plan, error) {
	p := Plan{
		Mode:    req.Mode,
		Device:  req.Device,
		Seconds: req.Seconds,
		At:      req.At,
	}
	if p.Mode == "" {
		p.Mode = DefaultMode
	}
	if p.Device == "" {
		p.Device = rtc.DefaultDevice
	}

	switch {
	case req.UTC:
		p.Basis = rtc.UTC
	case req.Local:
		p.Basis = rtc.Local
	default:
		b, err := rtc.BasisFromAdjtime(r.Adjtime)
		if err != nil {
			return Plan{}, err
		}
		p.Basis = b
	}

	r.Log.Verbosef("RTC time: %s\n", p.Basis)
	r.Log.Verbosef("Device: %s\n", p.Device)
	return p, nil
}
