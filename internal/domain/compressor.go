package domain

import "io"

// Compressor wraps an archive part writer in a compression codec.
type Compressor interface {
	WrapWriter(w io.Writer) (io.WriteCloser, error)
	Extension() string
}
