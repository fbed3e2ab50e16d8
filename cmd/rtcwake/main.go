// rtcwake — поставить будильник RTC и перевести систему в сон до заданного времени.
//
// Использование:
//
//	rtcwake -m mem -s 600      — уснуть в S3 на 10 минут
//	rtcwake -m no -t 1700000000 — только поставить будильник
//	rtcwake -m show            — показать будильник
//	rtcwake --list-modes       — режимы, которые поддерживает ядро
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/shiwa/timecard-mini/rtcwake/internal/config"
	"github.com/shiwa/timecard-mini/rtcwake/internal/logger"
	"github.com/shiwa/timecard-mini/rtcwake/internal/power"
	"github.com/shiwa/timecard-mini/rtcwake/internal/wake"
)

const usageHeader = `usage: rtcwake [-aluv] [-d FILE] [-m MODE] [-s SECS] [-t UNIX]

Enter the given sleep state until the given time.

Modes (--list-modes to see those supported by your kernel):
  disable  Cancel current alarm
  freeze   Freeze processes, idle processors
  disk     S4: suspend to disk
  mem      S3: suspend to RAM
  no       Don't suspend, just set wakeup time
  off      S5: power off
  on       Don't suspend, poll RTC for alarm
  show     Don't suspend, just show current alarm
  standby  S1: default

`

type options struct {
	listModes bool
	auto      bool
	local     bool
	utc       bool
	verbose   bool
	help      bool
	device    string
	mode      string
	config    string
	seconds   *int64
	at        *int64
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newFlagSet(o *options, secs, at *int64) *pflag.FlagSet {
	fs := pflag.NewFlagSet("rtcwake", pflag.ContinueOnError)
	fs.BoolVar(&o.listModes, "list-modes", false, "list supported modes and exit")
	fs.BoolVarP(&o.auto, "auto", "a", false, "RTC uses time specified in /etc/adjtime")
	fs.StringVarP(&o.device, "device", "d", "", "RTC device (default /dev/rtc0)")
	fs.BoolVarP(&o.local, "local", "l", false, "RTC uses local time")
	fs.StringVarP(&o.mode, "mode", "m", "", "sleep mode (default standby)")
	fs.Int64VarP(secs, "seconds", "s", 0, "wake SECS seconds from now")
	fs.Int64VarP(at, "time", "t", 0, "wake at UNIX seconds since epoch")
	fs.BoolVarP(&o.utc, "utc", "u", false, "RTC uses UTC")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "verbose output")
	fs.StringVarP(&o.config, "config", "c", "", "config file (default "+config.DefaultPath+")")
	fs.BoolVarP(&o.help, "help", "h", false, "show help")
	return fs
}

// parseArgs разбирает флаги. -a, -l и -u взаимоисключающие.
func parseArgs(args []string) (*options, *pflag.FlagSet, error) {
	o := &options{}
	var secs, at int64
	fs := newFlagSet(o, &secs, &at)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, fs, fmt.Errorf("%w: %v", wake.ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fs, fmt.Errorf("%w: unexpected argument %q", wake.ErrUsage, fs.Arg(0))
	}
	n := 0
	for _, b := range []bool{o.auto, o.local, o.utc} {
		if b {
			n++
		}
	}
	if n > 1 {
		return nil, fs, fmt.Errorf("%w: -a, -l and -u are mutually exclusive", wake.ErrUsage)
	}
	if fs.Changed("seconds") {
		o.seconds = &secs
	}
	if fs.Changed("time") {
		o.at = &at
	}
	return o, fs, nil
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	_, _ = io.WriteString(w, usageHeader)
	_, _ = io.WriteString(w, fs.FlagUsages())
}

// unsupportedHint перечисляет режимы, которые ядро принимает на самом деле.
func unsupportedHint(state power.StateFile) string {
	modes, err := state.Supported()
	if err != nil || len(modes) == 0 {
		return "see --list-modes for modes supported by this kernel"
	}
	return "kernel supports: " + strings.Join(modes, " ")
}

func run(args []string, stdout, stderr io.Writer) int {
	o, fs, err := parseArgs(args)
	if err != nil {
		logger.New(stdout, stderr, false).Errorf("%v", err)
		printUsage(stderr, fs)
		return 1
	}
	if o.help {
		printUsage(stdout, fs)
		return 0
	}
	log := logger.New(stdout, stderr, o.verbose)

	path := o.config
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.LoadOrDefault(path, o.config != "")
	if err != nil {
		log.Errorf("config: %v", err)
		return 1
	}
	log.Debugf("config: device=%s adjtime=%s power_state=%s", cfg.Device, cfg.Adjtime, cfg.PowerState)

	state := power.NewStateFile(cfg.PowerState)
	if o.listModes {
		if err := power.ListModes(stdout, state); err != nil {
			log.Errorf("%v", err)
			return 1
		}
		return 0
	}

	r := wake.New(log)
	r.Adjtime = cfg.Adjtime
	r.Power = state
	r.Settle = cfg.Settle()
	r.PowerOff = func() error { return power.Exec(cfg.Poweroff) }

	req := wake.Request{
		Mode:    wake.Mode(o.mode),
		Device:  o.device,
		Local:   o.local,
		UTC:     o.utc,
		Seconds: o.seconds,
		At:      o.at,
	}
	if req.Mode == "" {
		req.Mode = wake.Mode(cfg.Mode)
	}
	if req.Device == "" {
		req.Device = cfg.Device
	}

	if err := r.Run(req); err != nil {
		log.Errorf("%v", err)
		switch {
		case errors.Is(err, wake.ErrUsage):
			printUsage(stderr, fs)
		case errors.Is(err, power.ErrUnsupportedMode):
			log.Errorf("%s", unsupportedHint(state))
		}
		return 1
	}
	return 0
}
