//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package sys

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func OpenFile(path string) (file *os.File, err error) {
	return os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
}

// LockFile takes an exclusive advisory lock without blocking.
func LockFile(file *os.File) error {
	err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) {
		return ErrLocked
	}
	return err
}

func UnlockFile(file *os.File) error {
	return unix.Flock(int(file.Fd()), unix.LOCK_UN)
}

func GetSysPageSize() int {
	return unix.Getpagesize()
}
