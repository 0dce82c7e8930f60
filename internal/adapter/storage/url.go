package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// S3Location names an S3 bucket and an optional key prefix, parsed from an
// s3://bucket/path/to/folder destination URL.
type S3Location struct {
	Bucket string
	Prefix string
}

func ParseS3URL(raw string) (S3Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return S3Location{}, fmt.Errorf("invalid destination URL %q: %w", raw, err)
	}
	if u.Scheme != "s3" {
		return S3Location{}, fmt.Errorf("invalid destination URL %q: expected s3:// scheme", raw)
	}
	if u.Host == "" {
		return S3Location{}, fmt.Errorf("invalid destination URL %q: missing bucket name", raw)
	}
	return S3Location{
		Bucket: u.Host,
		Prefix: strings.Trim(u.Path, "/"),
	}, nil
}

// AzureLocation names a Blob Storage container and an optional prefix.
// Accepted forms are azure://container/path and the full service URL
// https://account.blob.core.windows.net/container/path; the short form
// leaves ServiceURL empty for the client to derive from the environment.
type AzureLocation struct {
	ServiceURL string
	Container  string
	Prefix     string
}

func ParseAzureURL(raw string) (AzureLocation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return AzureLocation{}, fmt.Errorf("invalid destination URL %q: %w", raw, err)
	}

	switch u.Scheme {
	case "azure":
		if u.Host == "" {
			return AzureLocation{}, fmt.Errorf("invalid destination URL %q: missing container name", raw)
		}
		return AzureLocation{
			Container: u.Host,
			Prefix:    strings.Trim(u.Path, "/"),
		}, nil
	case "https", "http":
		path := strings.Trim(u.Path, "/")
		if u.Host == "" || path == "" {
			return AzureLocation{}, fmt.Errorf("invalid destination URL %q: missing container name", raw)
		}
		container, prefix, _ := strings.Cut(path, "/")
		return AzureLocation{
			ServiceURL: u.Scheme + "://" + u.Host,
			Container:  container,
			Prefix:     strings.Trim(prefix, "/"),
		}, nil
	default:
		return AzureLocation{}, fmt.Errorf("invalid destination URL %q: expected azure:// or https:// scheme", raw)
	}
}
