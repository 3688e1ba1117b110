package trace

// TeeTracer feeds every event to a live stream and an in-memory ring at the
// same time: the stream is the full record, the ring keeps the recent tail
// for a post-mortem glance without re-reading the stream output.
type TeeTracer struct {
	level  Level
	stream *StreamTracer
	ring   *RingTracer
}

// NewTeeTracer combines a stream tracer and a ring tracer.
func NewTeeTracer(level Level, stream *StreamTracer, ring *RingTracer) *TeeTracer {
	return &TeeTracer{
		level:  level,
		stream: stream,
		ring:   ring,
	}
}

// Emit sends the event to both sides.
func (t *TeeTracer) Emit(ev *Event) {
	t.stream.Emit(ev)
	t.ring.Emit(ev)
}

// Flush flushes the stream side; the ring needs no flushing.
func (t *TeeTracer) Flush() error {
	return t.stream.Flush()
}

// Close closes the stream side.
func (t *TeeTracer) Close() error {
	return t.stream.Close()
}

// Level returns the configured level.
func (t *TeeTracer) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *TeeTracer) Enabled() bool {
	return t.level > LevelOff
}

// Ring exposes the buffered side for tail dumps.
func (t *TeeTracer) Ring() *RingTracer {
	return t.ring
}
