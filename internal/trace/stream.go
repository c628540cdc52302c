package trace

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// StreamTracer writes every admitted event as it arrives. Output to a
// regular file is buffered and reaches disk on Flush or Close.
type StreamTracer struct {
	mu     sync.Mutex
	out    *bufio.Writer
	dst    io.Writer
	level  Level
	format Format
	buf    []byte
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	t := &StreamTracer{dst: w, level: level, format: format}
	if f, ok := w.(*os.File); ok && !isStdStream(f) {
		t.out = bufio.NewWriter(f)
	}
	return t
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.format == FormatNDJSON {
		t.buf = appendJSON(t.buf[:0], ev)
	} else {
		t.buf = appendText(t.buf[:0], ev)
	}
	// ошибки записи трассы прогон не роняют
	if t.out != nil {
		_, _ = t.out.Write(t.buf)
	} else {
		_, _ = t.dst.Write(t.buf)
	}
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.out == nil {
		return nil
	}
	return t.out.Flush()
}

// Close flushes and closes the destination unless it is stdout or stderr.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.dst.(io.Closer); ok && !isStdStream(t.dst) {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level { return t.level }

func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }

func isStdStream(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (f == os.Stderr || f == os.Stdout)
}
