//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || windows)

package sys

import "os"

func OpenFile(path string) (file *os.File, err error) {
	return os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
}

// LockFile is a no-op where no advisory lock primitive is wired.
func LockFile(file *os.File) error {
	return nil
}

func UnlockFile(file *os.File) error {
	return nil
}

func GetSysPageSize() int {
	return os.Getpagesize()
}
