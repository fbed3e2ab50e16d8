package rtc

import (
	"bytes"
	"fmt"
	"os"
)

// DefaultAdjtime — файл hwclock(8); третья строка — "UTC" или "LOCAL".
const DefaultAdjtime = "/etc/adjtime"

// BasisFromAdjtime читает adjtime и возвращает UTC, если в файле есть "UTC", иначе Local.
func BasisFromAdjtime(path string) (Basis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Local, fmt.Errorf("read adjtime: %w", err)
	}
	if bytes.Contains(data, []byte("UTC")) {
		return UTC, nil
	}
	return Local, nil
}
