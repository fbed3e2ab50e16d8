// Package config — необязательный YAML-конфиг rtcwake. Флаги командной строки
// перекрывают значения из файла.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shiwa/timecard-mini/rtcwake/internal/power"
	"github.com/shiwa/timecard-mini/rtcwake/internal/rtc"
)

// DefaultPath — где ищется конфиг, если -c не задан.
const DefaultPath = "/etc/rtcwake.yml"

// Config — пути к интерфейсам ядра и значения по умолчанию.
// SettleDelay — пауза после установки будильника, чтобы сообщение дошло до консоли.
type Config struct {
	Device      string   `yaml:"device"`
	Adjtime     string   `yaml:"adjtime"`
	PowerState  string   `yaml:"power_state"`
	Mode        string   `yaml:"mode"`
	Poweroff    []string `yaml:"poweroff"`
	SettleDelay string   `yaml:"settle_delay"`
}

// Default возвращает конфиг по умолчанию.
func Default() *Config {
	return &Config{
		Device:      rtc.DefaultDevice,
		Adjtime:     rtc.DefaultAdjtime,
		PowerState:  power.DefaultStatePath,
		Mode:        "standby",
		Poweroff:    []string{"poweroff"},
		SettleDelay: "10ms",
	}
}

// Load читает конфиг из YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&c)
	if _, err := time.ParseDuration(c.SettleDelay); err != nil {
		return nil, fmt.Errorf("parse config: settle_delay: %w", err)
	}
	return &c, nil
}

// LoadOrDefault читает path; отсутствие файла по умолчанию не ошибка,
// явно заданный (explicit) файл обязан существовать.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	c, err := Load(path)
	if err == nil {
		return c, nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return nil, err
}

// Settle — SettleDelay как time.Duration (проверено в Load).
func (c *Config) Settle() time.Duration {
	d, err := time.ParseDuration(c.SettleDelay)
	if err != nil {
		return 10 * time.Millisecond
	}
	return d
}

func applyDefaults(c *Config) {
	d := Default()
	if c.Device == "" {
		c.Device = d.Device
	}
	if c.Adjtime == "" {
		c.Adjtime = d.Adjtime
	}
	if c.PowerState == "" {
		c.PowerState = d.PowerState
	}
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	if len(c.Poweroff) == 0 {
		c.Poweroff = d.Poweroff
	}
	if c.SettleDelay == "" {
		c.SettleDelay = d.SettleDelay
	}
}
