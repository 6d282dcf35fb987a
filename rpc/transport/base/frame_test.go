package base

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		requestID uint64
		data      []byte
		buf       []byte
	}{
		{"Empty", 1, []byte{}, nil},
		{"Small", 2, []byte("hello"), nil},
		{"PooledBuffer", 3, []byte("hello"), make([]byte, 1024)},
		{"LargerThanBuffer", 4, bytes.Repeat([]byte{0xab}, 4096), make([]byte, 16)},
		{"MaxRequestID", ^uint64(0), []byte{0}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeFrame(&buf, tt.requestID, tt.data); err != nil {
				t.Fatalf("Failed to write frame: %v", err)
			}
			if buf.Len() != headerSize+len(tt.data) {
				t.Errorf("Expected %d bytes, got %d", headerSize+len(tt.data), buf.Len())
			}

			requestID, data, err := readFrame(&buf, tt.buf)
			if err != nil {
				t.Fatalf("Failed to read frame: %v", err)
			}
			if requestID != tt.requestID {
				t.Errorf("Expected requestID %d, got %d", tt.requestID, requestID)
			}
			if !bytes.Equal(data, tt.data) {
				t.Errorf("Payload mismatch: expected %d bytes, got %d", len(tt.data), len(data))
			}
		})
	}
}

func TestFrameErrors(t *testing.T) {
	// clean EOF between frames
	if _, _, err := readFrame(bytes.NewReader(nil), nil); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}

	// EOF within the header
	if _, _, err := readFrame(bytes.NewReader([]byte{0, 0, 0}), nil); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Expected io.ErrUnexpectedEOF, got %v", err)
	}

	// EOF within the payload
	var buf bytes.Buffer
	if err := writeFrame(&buf, 7, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	truncated := buf.Bytes()[:buf.Len()-1]
	if _, _, err := readFrame(bytes.NewReader(truncated), nil); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Expected io.ErrUnexpectedEOF, got %v", err)
	}

	// announced payload too large
	header := make([]byte, headerSize)
	binary.BigEndian.PutUint32(header[8:], MaxFrameSize+1)
	if _, _, err := readFrame(bytes.NewReader(header), nil); err == nil {
		t.Error("Expected error for oversized frame")
	}
}

// TestFramesOverPipe writes several frames over a synchronous in-memory connection
func TestFramesOverPipe(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payloads := [][]byte{[]byte("first"), {}, bytes.Repeat([]byte("x"), 10_000)}

	go func() {
		for i, p := range payloads {
			if err := writeFrame(client, uint64(i+1), p); err != nil {
				t.Errorf("Failed to write frame %d: %v", i, err)
				return
			}
		}
	}()

	buf := make([]byte, 64)
	for i, p := range payloads {
		requestID, data, err := readFrame(server, buf)
		if err != nil {
			t.Fatalf("Failed to read frame %d: %v", i, err)
		}
		if requestID != uint64(i+1) || !bytes.Equal(data, p) {
			t.Errorf("Frame %d mismatch: id %d, %d bytes", i, requestID, len(data))
		}
	}
}
