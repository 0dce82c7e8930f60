package compressor

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/pharos-backup/pharos/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestForName(t *testing.T) {
	Convey("Given the configured codec identifiers", t, func() {
		Convey("No compression yields a nil compressor", func() {
			c, err := ForName(config.CompressionNone)
			So(err, ShouldBeNil)
			So(c, ShouldBeNil)
		})

		Convey("gz yields the gzip codec", func() {
			c, err := ForName(config.CompressionGzip)
			So(err, ShouldBeNil)
			So(c.Extension(), ShouldEqual, ".gz")
		})

		Convey("bz2 yields the bzip2 codec", func() {
			c, err := ForName(config.CompressionBzip2)
			So(err, ShouldBeNil)
			So(c.Extension(), ShouldEqual, ".bz2")
		})

		Convey("Anything else is rejected", func() {
			_, err := ForName("xz")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRoundTrips(t *testing.T) {
	payload := []byte("base backup bytes, repeated enough to compress: " +
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

	Convey("Given data written through a codec", t, func() {
		Convey("Gzip round-trips", func() {
			var buf bytes.Buffer
			w, err := NewGzip().WrapWriter(&buf)
			So(err, ShouldBeNil)
			_, err = w.Write(payload)
			So(err, ShouldBeNil)
			So(w.Close(), ShouldBeNil)

			r, err := gzip.NewReader(&buf)
			So(err, ShouldBeNil)
			out, err := io.ReadAll(r)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, payload)
		})

		Convey("Bzip2 round-trips", func() {
			var buf bytes.Buffer
			w, err := NewBzip2().WrapWriter(&buf)
			So(err, ShouldBeNil)
			_, err = w.Write(payload)
			So(err, ShouldBeNil)
			So(w.Close(), ShouldBeNil)

			r, err := bzip2.NewReader(&buf, nil)
			So(err, ShouldBeNil)
			out, err := io.ReadAll(r)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, payload)
		})
	})
}
