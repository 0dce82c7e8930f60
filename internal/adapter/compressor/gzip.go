package compressor

import (
	"compress/gzip"
	"io"
)

type GzipCompressor struct{}

func NewGzip() *GzipCompressor {
	return &GzipCompressor{}
}

func (g *GzipCompressor) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, gzip.BestCompression)
}

func (g *GzipCompressor) Extension() string {
	return ".gz"
}
