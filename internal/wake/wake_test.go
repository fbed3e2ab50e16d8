package wake

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiwa/timecard-mini/rtcwake/internal/logger"
	"github.com/shiwa/timecard-mini/rtcwake/internal/power"
	"github.com/shiwa/timecard-mini/rtcwake/internal/rtc"
)

// fakeRTC — RTC в памяти; будильник переживает между запусками Runner.
type fakeRTC struct {
	now       rtc.Time
	alarm     rtc.Alarm
	sets      int
	status    []uint64
	statusErr error
	reads     int
	closed    int
}

func (f *fakeRTC) ReadTime() (rtc.Time, error)   { return f.now, nil }
func (f *fakeRTC) ReadAlarm() (rtc.Alarm, error) { return f.alarm, nil }

func (f *fakeRTC) SetAlarm(a rtc.Alarm) error {
	f.sets++
	f.alarm = a
	return nil
}

func (f *fakeRTC) ReadStatus() (uint64, error) {
	if f.reads >= len(f.status) {
		if f.statusErr != nil {
			return 0, f.statusErr
		}
		return 0, errors.New("no more status words")
	}
	v := f.status[f.reads]
	f.reads++
	return v, nil
}

func (f *fakeRTC) Close() error {
	f.closed++
	return nil
}

type fakePower struct {
	entered []string
	err     error
}

func (f *fakePower) Enter(mode string) error {
	f.entered = append(f.entered, mode)
	return f.err
}

type harness struct {
	r        *Runner
	dev      *fakeRTC
	pw       *fakePower
	out      *bytes.Buffer
	syncs    int
	slept    []time.Duration
	poweroff int
}

// newHarness: системные часы = system, RTC (UTC) = rtcNow.
func newHarness(t *testing.T, system, rtcNow int64, verbose bool) *harness {
	t.Helper()
	cal, err := rtc.Calendar(rtcNow, time.UTC)
	require.NoError(t, err)

	h := &harness{
		dev: &fakeRTC{now: cal},
		pw:  &fakePower{},
		out: &bytes.Buffer{},
	}
	h.r = &Runner{
		Open:     func(string) (rtc.Device, error) { return h.dev, nil },
		Now:      func() time.Time { return time.Unix(system, 0) },
		Local:    time.UTC,
		Adjtime:  filepath.Join(t.TempDir(), "adjtime"),
		Sync:     func() { h.syncs++ },
		Sleep:    func(d time.Duration) { h.slept = append(h.slept, d) },
		Settle:   10 * time.Millisecond,
		Power:    h.pw,
		PowerOff: func() error { h.poweroff++; return nil },
		Log:      logger.New(h.out, &bytes.Buffer{}, verbose),
	}
	return h
}

func i64(v int64) *int64 { return &v }

func TestTargetRelative(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		rtcNow := rng.Int63n(1 << 40)
		secs := rng.Int63n(1 << 30)
		got, err := Target(Snapshot{System: rng.Int63n(1 << 40), RTC: rtcNow}, Plan{Mode: ModeMem, Seconds: i64(secs)})
		require.NoError(t, err)
		require.Equal(t, rtcNow+secs+1, got)
	}
}

func TestTargetRelativeNotAfterRTC(t *testing.T) {
	snap := Snapshot{System: 1700000000, RTC: 1700000000}

	got, err := Target(snap, Plan{Mode: ModeNo, Seconds: i64(0)})
	require.NoError(t, err)
	assert.Equal(t, int64(1700000001), got, "-s 0 всё равно строго позже rtc")

	for _, secs := range []int64{-1, -100, math.MinInt64} {
		_, err := Target(snap, Plan{Mode: ModeNo, Seconds: i64(secs)})
		assert.ErrorIs(t, err, ErrPastWakeTime, "-s %d", secs)
	}
}

func TestTargetOverflow(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		plan Plan
	}{
		{"seconds max", Snapshot{System: 1700000000, RTC: 1700000000}, Plan{Seconds: i64(math.MaxInt64)}},
		{"seconds max minus rtc", Snapshot{System: 1700000000, RTC: 1700000000}, Plan{Seconds: i64(math.MaxInt64 - 1700000000)}},
		{"time max, rtc ahead", Snapshot{System: 1700000000, RTC: 1700000100}, Plan{At: i64(math.MaxInt64)}},
		{"time min, rtc behind", Snapshot{System: 1700000100, RTC: 1700000000}, Plan{At: i64(math.MinInt64)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Target(tt.snap, tt.plan)
			assert.ErrorIs(t, err, rtc.ErrTimeRange)
		})
	}
}

func TestTargetAbsolute(t *testing.T) {
	tests := []struct {
		name    string
		system  int64
		rtcNow  int64
		at      int64
		want    int64
		wantErr error
	}{
		{"in sync", 1700000000, 1700000000, 1700000300, 1700000300, nil},
		{"rtc ahead", 1700000000, 1700000100, 1700000500, 1700000600, nil},
		{"rtc behind", 1700000100, 1700000000, 1700000500, 1700000400, nil},
		{"one second ahead", 1700000000, 1700000000, 1700000001, 1700000001, nil},
		{"now", 1700000000, 1700000000, 1700000000, 0, ErrPastWakeTime},
		{"past after drift", 1700000000, 1700000100, 1699999900, 0, ErrPastWakeTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Target(Snapshot{System: tt.system, RTC: tt.rtcNow}, Plan{Mode: ModeMem, At: i64(tt.at)})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), fmt.Sprint(tt.rtcNow))
				assert.Contains(t, err.Error(), fmt.Sprint(tt.at))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTargetSecondsWinOverTime(t *testing.T) {
	got, err := Target(Snapshot{System: 100, RTC: 100}, Plan{Seconds: i64(5), At: i64(50)})
	require.NoError(t, err)
	assert.Equal(t, int64(106), got)
}

func TestTargetNeedsTime(t *testing.T) {
	_, err := Target(Snapshot{}, Plan{Mode: ModeMem})
	require.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "-m mem needs -s or -t")
}

func TestResolveBasis(t *testing.T) {
	h := newHarness(t, 0, 0, false)
	require.NoError(t, os.WriteFile(h.r.Adjtime, []byte("0.0 0 0.0\n0\nUTC\n"), 0o644))

	p, err := h.r.Resolve(Request{})
	require.NoError(t, err)
	assert.Equal(t, rtc.UTC, p.Basis, "adjtime с UTC")
	assert.Equal(t, DefaultMode, p.Mode)
	assert.Equal(t, rtc.DefaultDevice, p.Device)

	p, err = h.r.Resolve(Request{Local: true})
	require.NoError(t, err)
	assert.Equal(t, rtc.Local, p.Basis, "-l сильнее adjtime")

	require.NoError(t, os.WriteFile(h.r.Adjtime, []byte("0.0 0 0.0\n0\nLOCAL\n"), 0o644))
	p, err = h.r.Resolve(Request{UTC: true})
	require.NoError(t, err)
	assert.Equal(t, rtc.UTC, p.Basis, "-u сильнее adjtime")

	p, err = h.r.Resolve(Request{Device: "/dev/rtc1", Mode: ModeMem})
	require.NoError(t, err)
	assert.Equal(t, rtc.Local, p.Basis)
	assert.Equal(t, "/dev/rtc1", p.Device)
	assert.Equal(t, ModeMem, p.Mode)
}

func TestResolveMissingAdjtime(t *testing.T) {
	h := newHarness(t, 0, 0, false)
	_, err := h.r.Resolve(Request{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveVerbose(t *testing.T) {
	h := newHarness(t, 0, 0, true)
	_, err := h.r.Resolve(Request{UTC: true, Device: "/dev/rtc1"})
	require.NoError(t, err)
	assert.Equal(t, "RTC time: UTC\nDevice: /dev/rtc1\n", h.out.String())
}

func TestRunRelativeThenShow(t *testing.T) {
	h := newHarness(t, 1700000000, 1700000000, false)

	err := h.r.Run(Request{Mode: ModeNo, UTC: true, Seconds: i64(60)})
	require.NoError(t, err)

	want, err := rtc.Calendar(1700000061, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, rtc.Alarm{Enabled: true, Time: want}, h.dev.alarm)
	assert.Equal(t, 1, h.syncs)
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, h.slept)
	assert.Equal(t, "wakeup using \"no\" from /dev/rtc0 at Tue Nov 14 22:14:21 2023\n", h.out.String())
	assert.Empty(t, h.pw.entered)
	assert.Equal(t, 1, h.dev.closed)

	h.out.Reset()
	require.NoError(t, h.r.Run(Request{Mode: ModeShow, UTC: true}))
	assert.Equal(t, "alarm: on "+time.Unix(1700000061, 0).UTC().Format(time.ANSIC)+"\n", h.out.String())
}

func TestRunAbsoluteArms(t *testing.T) {
	h := newHarness(t, 1700000000, 1700000100, false)
	require.NoError(t, h.r.Run(Request{Mode: ModeNo, UTC: true, At: i64(1700000500)}))

	want, err := rtc.Calendar(1700000600, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, want, h.dev.alarm.Time)
	assert.True(t, h.dev.alarm.Enabled)
}

func TestRunPastTimeDoesNotWrite(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"time before rtc", Request{Mode: ModeMem, UTC: true, At: i64(1699999900)}, ErrPastWakeTime},
		{"negative seconds", Request{Mode: ModeNo, UTC: true, Seconds: i64(-100)}, ErrPastWakeTime},
		{"seconds -1", Request{Mode: ModeNo, UTC: true, Seconds: i64(-1)}, ErrPastWakeTime},
		{"seconds overflow", Request{Mode: ModeNo, UTC: true, Seconds: i64(math.MaxInt64)}, rtc.ErrTimeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 1700000000, 1700000100, false)
			err := h.r.Run(tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, h.dev.sets)
			assert.Zero(t, h.syncs)
			assert.Empty(t, h.pw.entered)
			assert.Equal(t, 1, h.dev.closed)
		})
	}
}

func TestRunMissingTimeIsUsage(t *testing.T) {
	h := newHarness(t, 1700000000, 1700000000, false)
	err := h.r.Run(Request{Mode: ModeStandby, UTC: true})
	require.ErrorIs(t, err, ErrUsage)
	assert.Zero(t, h.dev.sets)
}

func TestShowNoAlarm(t *testing.T) {
	h := newHarness(t, 1700000000, 1700000000, false)
	require.NoError(t, h.r.Run(Request{Mode: ModeShow, UTC: true}))
	assert.Equal(t, "alarm: off\n", h.out.String())
	assert.Zero(t, h.dev.sets)
}

func TestShowBadAlarmTime(t *testing.T) {
	h := newHarness(t, 1700000000, 1700000000, false)
	h.dev.alarm = rtc.Alarm{Enabled: true, Time: rtc.Time{Year: 2023, Month: 0, Day: -1}}
	err := h.r.Run(Request{Mode: ModeShow, UTC: true})
	assert.ErrorIs(t, err, rtc.ErrTimeRange)
}

func TestDisableIdempotent(t *testing.T) {
	h := newHarness(t, 1700000000, 1700000000, false)
	require.NoError(t, h.r.Run(Request{Mode: ModeNo, UTC: true, Seconds: i64(60)}))
	h.out.Reset()

	for i := 0; i < 2; i++ {
		require.NoError(t, h.r.Run(Request{Mode: ModeDisable, UTC: true}))
		assert.False(t, h.dev.alarm.Enabled)
	}
	assert.Empty(t, h.out.String())
	assert.Equal(t, 1, h.syncs, "disable не вызывает sync")

	require.NoError(t, h.r.Run(Request{Mode: ModeShow, UTC: true}))
	assert.Equal(t, "alarm: off\n", h.out.String())
}

func TestDispatchSuspend(t *testing.T) {
	h := newHarness(t, 1700000000, 1700000000, false)
	require.NoError(t, h.r.Run(Request{Mode: ModeMem, UTC: true, Seconds: i64(30)}))
	assert.Equal(t, []string{"mem"}, h.pw.entered)
}

func TestDispatchUnsupportedMode(t *testing.T) {
	h := newHarness(t, 1700000000, 1700000000, false)
	h.pw.err = fmt.Errorf("%w: %q", power.ErrUnsupportedMode, "bogus-state")

	err := h.r.Run(Request{Mode: "bogus-state", UTC: true, Seconds: i64(30)})
	require.ErrorIs(t, err, power.ErrUnsupportedMode)
	assert.Equal(t, []string{"bogus-state"}, h.pw.entered)
	// будильник остаётся взведённым
	assert.True(t, h.dev.alarm.Enabled)
}

func TestDispatchOff(t *testing.T) {
	h := newHarness(t, 1700000000, 1700000000, false)
	require.NoError(t, h.r.Run(Request{Mode: ModeOff, UTC: true, Seconds: i64(60)}))
	assert.Equal(t, 1, h.poweroff)
	assert.Empty(t, h.pw.entered)
	assert.Equal(t, "wakeup using \"off\" from /dev/rtc0 at Tue Nov 14 22:14:21 2023\n", h.out.String(),
		"после poweroff вывода быть не должно")
}

func TestDispatchOnPollsUntilAlarm(t *testing.T) {
	h := newHarness(t, 1700000000, 1700000000, true)
	h.dev.status = []uint64{0x190, 0x1a0, 0x120}
	require.NoError(t, h.r.Run(Request{Mode: ModeOn, UTC: true, Seconds: i64(5)}))
	assert.Equal(t, 2, h.dev.reads)
	assert.Contains(t, h.out.String(), "Reading RTC...\n... /dev/rtc0: 190\n... /dev/rtc0: 1a0\n")
}

func TestDispatchOnReadError(t *testing.T) {
	h := newHarness(t, 1700000000, 1700000000, false)
	h.dev.statusErr = errors.New("read /dev/rtc0: interrupted")
	err := h.r.Run(Request{Mode: ModeOn, UTC: true, Seconds: i64(5)})
	assert.ErrorContains(t, err, "interrupted")
}

func TestRunVerboseLines(t *testing.T) {
	h := newHarness(t, 1700000000, 1700000010, true)
	require.NoError(t, h.r.Run(Request{Mode: ModeNo, UTC: true, Seconds: i64(60)}))
	out := h.out.String()
	assert.Contains(t, out, "RTC time: UTC\n")
	assert.Contains(t, out, "Device: /dev/rtc0\n")
	assert.Contains(t, out, "System time:\t1700000000 / ")
	assert.Contains(t, out, "RTC time:\t1700000010 / ")
	assert.Contains(t, out, "Wake time:\t1700000071 / ")
}

func TestRunLocalBasis(t *testing.T) {
	zone := time.FixedZone("EET", 2*3600)
	h := newHarness(t, 1700000000, 1700000000, false)
	h.r.Local = zone
	// RTC хранит локальное время: те же регистры, что у UTC+2
	cal, err := rtc.Calendar(1700000000, zone)
	require.NoError(t, err)
	h.dev.now = cal

	require.NoError(t, h.r.Run(Request{Mode: ModeNo, Local: true, Seconds: i64(60)}))
	want, err := rtc.Calendar(1700000061, zone)
	require.NoError(t, err)
	assert.Equal(t, want, h.dev.alarm.Time)
}

func TestRunOpenError(t *testing.T) {
	h := newHarness(t, 0, 0, false)
	h.r.Open = func(path string) (rtc.Device, error) {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrPermission}
	}
	err := h.r.Run(Request{Mode: ModeShow, UTC: true})
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestSnapshotOffset(t *testing.T) {
	assert.Equal(t, int64(100), Snapshot{System: 1700000000, RTC: 1700000100}.Offset())
	assert.Equal(t, int64(-5), Snapshot{System: 10, RTC: 5}.Offset())
}
