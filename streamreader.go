package twitter

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

const maxStreamLine = 1 << 20

// StreamReader splits a delimited stream into artifacts and resolves each
// one. Blank keep-alive lines and the length prefixes sent with
// delimited=length are skipped.
type StreamReader struct {
	dec  *Decoder
	sc   *bufio.Scanner
	done bool
}

// NewStreamReader reads artifacts from r with the default decoder.
func NewStreamReader(r io.Reader) *StreamReader {
	return defaultDecoder.NewStreamReader(r)
}

// NewStreamReader reads artifacts from r.
func (d *Decoder) NewStreamReader(r io.Reader) *StreamReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxStreamLine)
	return &StreamReader{dec: d, sc: sc}
}

// Next returns the next event. The StreamEnd event is returned once; after
// it, and at the end of r, Next returns io.EOF.
func (sr *StreamReader) Next() (StreamEvent, error) {
	if sr.done {
		return nil, io.EOF
	}
	for sr.sc.Scan() {
		line := sr.sc.Bytes()
		if skipStreamLine(line) {
			continue
		}
		ev := sr.dec.ResolveArtifact(bytes.Clone(line))
		if _, ok := ev.(StreamEnd); ok {
			sr.done = true
		}
		return ev, nil
	}
	sr.done = true
	if err := sr.sc.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	return nil, io.EOF
}

// Each calls fn for every event until the stream ends, fn fails or ctx is
// done.
func (sr *StreamReader) Each(ctx context.Context, fn func(StreamEvent) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := sr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}

func skipStreamLine(line []byte) bool {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return true
	}
	for _, c := range line {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
