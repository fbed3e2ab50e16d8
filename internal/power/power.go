// Package power — интерфейс ядра /sys/power/state и выключение машины.
package power

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
)

// DefaultStatePath — sysfs файл состояний сна.
const DefaultStatePath = "/sys/power/state"

// BuiltinModes — режимы, которые rtcwake обрабатывает сам, без записи в ядро.
const BuiltinModes = "off no on disable show"

// ErrUnsupportedMode — ядро отвергло имя состояния (EINVAL при записи).
var ErrUnsupportedMode = errors.New("mode not supported by kernel")

// StateFile — файл состояний ядра. Чтение даёт список через пробел,
// запись имени переводит систему в это состояние.
type StateFile struct {
	Path string
}

// NewStateFile возвращает StateFile; пустой path — DefaultStatePath.
func NewStateFile(path string) StateFile {
	if path == "" {
		path = DefaultStatePath
	}
	return StateFile{Path: path}
}

// Supported возвращает состояния, которые поддерживает ядро.
func (s StateFile) Supported() ([]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return strings.Fields(string(data)), nil
}

// Enter пишет имя режима в файл состояний. Возврат из Enter означает,
// что система уже проснулась (или ядро отказало).
func (s StateFile) Enter(mode string) error {
	f, err := os.OpenFile(s.Path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(mode); err != nil {
		return classify(s.Path, mode, err)
	}
	return nil
}

// classify отделяет «ядро не знает такой режим» от прочих ошибок записи.
func classify(path, mode string, err error) error {
	if errors.Is(err, syscall.EINVAL) {
		return fmt.Errorf("%w: %q (%s)", ErrUnsupportedMode, mode, path)
	}
	return fmt.Errorf("write %s: %w", path, err)
}

// ListModes печатает встроенные режимы и содержимое файла состояний одной строкой.
func ListModes(w io.Writer, s StateFile) error {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.Path, err)
	}
	_, err = fmt.Fprintf(w, "%s %s", BuiltinModes, data)
	return err
}
