package compressor

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

// Bzip2Compressor uses dsnet/compress: the standard library only ships a
// bzip2 reader.
type Bzip2Compressor struct{}

func NewBzip2() *Bzip2Compressor {
	return &Bzip2Compressor{}
}

func (b *Bzip2Compressor) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
}

func (b *Bzip2Compressor) Extension() string {
	return ".bz2"
}
