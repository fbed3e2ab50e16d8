//go:build unix

package power

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// Exec заменяет образ процесса командой argv (execve). При успехе не возвращается.
func Exec(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("exec: empty command")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("exec %s: %w", argv[0], err)
	}
	if err := unix.Exec(path, argv, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}
