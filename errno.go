package bitrie

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateKey  = errors.New("bitrie: duplicate key")
	ErrNotFound      = errors.New("bitrie: not found")
	ErrKeyNotFound   = errors.New("bitrie: key not found")
	ErrCorruptStore  = errors.New("bitrie: corrupt store")
	ErrEmptySequence = errors.New("bitrie: empty bit sequence")
	ErrPartialByte   = errors.New("bitrie: bit length is not a multiple of 8")
	ErrEmptyKey      = errors.New("bitrie: empty key")
	ErrKeyTooLong    = errors.New("bitrie: key exceeds 65535 bits")
	ErrValueTooLong  = errors.New("bitrie: value exceeds 65535 bytes")
	ErrStoreFull     = errors.New("bitrie: store offset does not fit in 32 bits")
	ErrStoreLocked   = errors.New("bitrie: store is held by another owner")
	ErrClosed        = errors.New("bitrie: index is closed")
	// ErrRebuildFailed is returned by a mutation that was applied but whose
	// automatic rebuild failed. Retrying the mutation is wrong.
	ErrRebuildFailed = errors.New("bitrie: mutation applied, automatic rebuild failed")
)

const keyExcerptRunes = 10

// KeyNotFoundError is returned by Index.Get. It matches ErrKeyNotFound.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrKeyNotFound, excerpt(e.Key))
}

func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

func excerpt(key string) string {
	r := []rune(key)
	if len(r) <= keyExcerptRunes {
		return key
	}
	return string(r[:keyExcerptRunes]) + "..."
}
