package compressor

import (
	"fmt"

	"github.com/pharos-backup/pharos/internal/config"
	"github.com/pharos-backup/pharos/internal/domain"
)

// ForName maps a configured codec identifier to a Compressor. The empty
// identifier means no compression and yields nil.
func ForName(name string) (domain.Compressor, error) {
	switch name {
	case config.CompressionNone:
		return nil, nil
	case config.CompressionGzip:
		return NewGzip(), nil
	case config.CompressionBzip2:
		return NewBzip2(), nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", name)
	}
}
