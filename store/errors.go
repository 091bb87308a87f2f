package store

import "errors"

var (
	ErrNotFound   = errors.New("store: not found")
	ErrInvalidCID = errors.New("store: invalid cid")
	ErrMismatch   = errors.New("store: content does not match cid")
	ErrImmutable  = errors.New("store: immutable object mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
