package sys

import "errors"

var ErrLocked = errors.New("file is locked by another process")
