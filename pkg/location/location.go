// Package location resolves raw resource identifiers (local paths or
// s3:// URIs) into normalized locations and detects the file format
// from the identifier's extension.
package location

import (
	"errors"
	"fmt"
	"strings"
)

// S3Scheme is the URI prefix identifying object-store resources.
const S3Scheme = "s3://"

// ErrInvalidS3URI is returned when a string claimed to be an S3 URI
// does not carry the s3:// prefix.
var ErrInvalidS3URI = errors.New("invalid S3 URI format")

// Kind discriminates between storage backends.
type Kind int

const (
	// KindLocal is a file on the local filesystem.
	KindLocal Kind = iota
	// KindS3 is an object in an S3 bucket.
	KindS3
)

// Location is a resolved resource identifier. Immutable once created.
type Location struct {
	Kind   Kind
	Path   string // local path, set when Kind == KindLocal
	Bucket string // bucket name, set when Kind == KindS3
	Key    string // object key, may be empty
}

// Resolve normalizes a raw identifier into a Location. Identifiers with
// the s3:// prefix are split into bucket and key; everything else is
// treated as a local path.
func Resolve(identifier string) Location {
	if strings.HasPrefix(identifier, S3Scheme) {
		loc, _ := ParseS3URI(identifier)
		return loc
	}
	return Location{Kind: KindLocal, Path: identifier}
}

// ParseS3URI splits an s3://bucket/key URI into its components. The key
// is everything after the first slash following the bucket; a missing
// key resolves to the empty string, which is valid.
func ParseS3URI(uri string) (Location, error) {
	if !strings.HasPrefix(uri, S3Scheme) {
		return Location{}, fmt.Errorf("%w: %s", ErrInvalidS3URI, uri)
	}
	bucket, key, _ := strings.Cut(uri[len(S3Scheme):], "/")
	return Location{Kind: KindS3, Bucket: bucket, Key: key}, nil
}

// String renders the location back as a resource identifier.
func (l Location) String() string {
	if l.Kind == KindS3 {
		return S3Scheme + l.Bucket + "/" + l.Key
	}
	return l.Path
}

// Format detects the file format from the location's path or key.
func (l Location) Format() (Format, error) {
	if l.Kind == KindS3 {
		return DetectFormat(l.Key)
	}
	return DetectFormat(l.Path)
}
