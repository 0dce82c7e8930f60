package storage

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseS3URL(t *testing.T) {
	Convey("Given S3 destination URLs", t, func() {
		Convey("A bucket with a path prefix parses", func() {
			loc, err := ParseS3URL("s3://bucket/path/to/folder")

			So(err, ShouldBeNil)
			So(loc.Bucket, ShouldEqual, "bucket")
			So(loc.Prefix, ShouldEqual, "path/to/folder")
		})

		Convey("A bare bucket parses with an empty prefix", func() {
			loc, err := ParseS3URL("s3://bucket")

			So(err, ShouldBeNil)
			So(loc.Bucket, ShouldEqual, "bucket")
			So(loc.Prefix, ShouldEqual, "")
		})

		Convey("The wrong scheme is rejected", func() {
			_, err := ParseS3URL("gs://bucket/path")
			So(err, ShouldNotBeNil)
		})

		Convey("A missing bucket is rejected", func() {
			_, err := ParseS3URL("s3:///path")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseAzureURL(t *testing.T) {
	Convey("Given Azure destination URLs", t, func() {
		Convey("The short container form parses", func() {
			loc, err := ParseAzureURL("azure://container/path/to/folder")

			So(err, ShouldBeNil)
			So(loc.ServiceURL, ShouldEqual, "")
			So(loc.Container, ShouldEqual, "container")
			So(loc.Prefix, ShouldEqual, "path/to/folder")
		})

		Convey("A full service URL parses", func() {
			loc, err := ParseAzureURL("https://account.blob.core.windows.net/container/path")

			So(err, ShouldBeNil)
			So(loc.ServiceURL, ShouldEqual, "https://account.blob.core.windows.net")
			So(loc.Container, ShouldEqual, "container")
			So(loc.Prefix, ShouldEqual, "path")
		})

		Convey("A service URL without a container is rejected", func() {
			_, err := ParseAzureURL("https://account.blob.core.windows.net")
			So(err, ShouldNotBeNil)
		})

		Convey("The wrong scheme is rejected", func() {
			_, err := ParseAzureURL("s3://bucket/path")
			So(err, ShouldNotBeNil)
		})
	})
}
