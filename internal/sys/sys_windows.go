//go:build windows

package sys

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

func OpenFile(path string) (file *os.File, err error) {
	return os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
}

// LockFile takes an exclusive lock on the first byte without blocking.
func LockFile(file *os.File) error {
	err := windows.LockFileEx(windows.Handle(file.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0, 1, 0, new(windows.Overlapped))
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return ErrLocked
	}
	return err
}

func UnlockFile(file *os.File) error {
	return windows.UnlockFileEx(windows.Handle(file.Fd()), 0, 1, 0, new(windows.Overlapped))
}

func GetSysPageSize() int {
	return windows.Getpagesize()
}
