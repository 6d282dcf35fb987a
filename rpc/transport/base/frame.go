package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

const (
	// headerSize is the size of the frame header (requestID + length)
	headerSize = 12
	// MaxFrameSize is the largest payload accepted by readFrame
	MaxFrameSize = 64 * 1024 * 1024
)

// writeFrame writes a frame with the format:
// - 8 bytes: requestID (uint64, big endian)
// - 4 bytes: data length (uint32, big endian)
// - N bytes: data payload
func writeFrame(w io.Writer, requestID uint64, data []byte) error {
	if len(data) > MaxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds the maximum of %d bytes", len(data), MaxFrameSize)
	}

	header := make([]byte, headerSize)
	binary.BigEndian.PutUint64(header[:8], requestID)
	binary.BigEndian.PutUint32(header[8:12], uint32(len(data)))

	b := net.Buffers{header, data}
	_, err := b.WriteTo(w)
	return err
}

// readFrame reads a frame using the provided buffer.
// If the buffer is too small, a new buffer is allocated for the data, so the
// returned slice may or may not alias buf.
func readFrame(r io.Reader, buf []byte) (uint64, []byte, error) {
	if len(buf) < headerSize {
		buf = make([]byte, headerSize)
	}

	if _, err := io.ReadFull(r, buf[:headerSize]); err != nil {
		return 0, nil, err
	}

	requestID := binary.BigEndian.Uint64(buf[:8])
	contentLength := binary.BigEndian.Uint32(buf[8:12])

	if contentLength == 0 {
		return requestID, []byte{}, nil
	}
	if contentLength > MaxFrameSize {
		return requestID, nil, fmt.Errorf("frame of %d bytes exceeds the maximum of %d bytes", contentLength, MaxFrameSize)
	}

	if len(buf) < int(contentLength) {
		buf = make([]byte, contentLength)
	}

	if _, err := io.ReadFull(r, buf[:contentLength]); err != nil {
		// a frame that ends within its payload is never a clean EOF
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return requestID, nil, err
	}

	return requestID, buf[:contentLength], nil
}
