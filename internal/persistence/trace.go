package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/assetworld/internal/engine"
)

// TraceWriter appends one JSON line per report to a zstd-compressed file.
type TraceWriter struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// CreateTrace creates (or truncates) the trace file at path.
func CreateTrace(path string) (*TraceWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &TraceWriter{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Write appends rep.
func (t *TraceWriter) Write(rep engine.Report) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	if _, err := t.w.Write(b); err != nil {
		return err
	}
	return t.w.WriteByte('\n')
}

// Close flushes and closes the file. The trace is only complete after Close.
func (t *TraceWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var err1 error
	if t.w != nil {
		err1 = t.w.Flush()
		t.w = nil
	}
	if t.enc != nil {
		if err := t.enc.Close(); err1 == nil {
			err1 = err
		}
		t.enc = nil
	}
	if t.f != nil {
		if err := t.f.Close(); err1 == nil {
			err1 = err
		}
		t.f = nil
	}
	return err1
}

// ReadTrace decodes every report in the trace at path, in order.
func ReadTrace(path string) ([]engine.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []engine.Report
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var rep engine.Report
		if err := json.Unmarshal(sc.Bytes(), &rep); err != nil {
			return out, fmt.Errorf("trace line %d: %w", len(out)+1, err)
		}
		out = append(out, rep)
	}
	return out, sc.Err()
}
