package gsmerge

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

// ErrUnixCompress is returned for .Z (LZW) streams, which cannot be decoded.
var ErrUnixCompress = errors.New("unix compress (.Z) streams are not supported; decompress the file first")

var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeZ:     {0x1f, 0x9d},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

// DetectDataType compares the leading bytes of a stream against a set of known
// compression signatures. Byte code signatures from
// https://stackoverflow.com/a/19127748/199475
func DetectDataType(head []byte) DataType {
Outer:
	for dt, sig := range byteCodeSigs {
		if len(head) < len(sig) {
			continue
		}
		for position := range sig {
			if head[position] != sig[position] {
				continue Outer
			}
		}
		return dt
	}

	return DataTypeNoCompression
}

// MaybeDecompressReadCloser peeks at the start of rc and, if it carries a known
// compression signature, returns a reader over the decompressed stream. Closing
// the returned reader closes rc. Google Storage readers cannot seek, so the
// signature is read through a buffer instead of seeking back.
func MaybeDecompressReadCloser(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)

	// A short file is fine; it simply cannot carry a signature.
	head, err := br.Peek(6)
	if err == io.EOF {
		err = nil
	}
	if err != nil {
		return nil, err
	}

	var r io.Reader
	switch DetectDataType(head) {
	case DataTypeGzip:
		r, err = gzip.NewReader(br)
	case DataTypeZip:
		// Only the first member of a zip archive is read
		zr := zipstream.NewReader(br)
		if _, err = zr.Next(); err == nil {
			r = zr
		}
	case DataTypeBZip2:
		r = bzip2.NewReader(br)
	case DataTypeXZ:
		r, err = xz.NewReader(br, 0)
	case DataTypeZ:
		err = ErrUnixCompress
	default:
		r = br
	}
	if err != nil {
		return nil, err
	}

	return &decompressingReadCloser{Reader: r, underlying: rc}, nil
}

// decompressingReadCloser reads from the (possibly) decompressed stream and
// closes the underlying source.
type decompressingReadCloser struct {
	io.Reader
	underlying io.Closer
}

func (c *decompressingReadCloser) Close() error {
	if closer, ok := c.Reader.(io.Closer); ok {
		closer.Close()
	}

	return c.underlying.Close()
}
