package wire

import "errors"

// ErrFrameTooLarge reports a frame whose payload length exceeds the
// configured cap, in either direction.
var ErrFrameTooLarge = errors.New("frame payload exceeds length cap")
