//go:build !unix

package power

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Exec без execve: запускает argv, ждёт и завершает процесс с кодом дочернего.
func Exec(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("exec: empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		os.Exit(0)
	case errors.As(err, &exitErr):
		os.Exit(exitErr.ExitCode())
	}
	return fmt.Errorf("exec %s: %w", argv[0], err)
}
