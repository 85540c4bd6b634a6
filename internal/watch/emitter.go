package watch

import (
	"encoding/json"
	"io"

	"github.com/obentoo/waybar-updates/internal/render"
)

// StreamEmitter writes line-delimited JSON records to a stream. It is the
// sole writer to that stream; each record is written whole and flushed
// immediately so the consumer never sees a partial or delayed line.
type StreamEmitter struct {
	w   io.Writer
	enc *json.Encoder
}

// NewStreamEmitter wraps w. Pango markup in tooltips stays readable
// because HTML escaping is off; waybar's JSON parser accepts it either
// way.
func NewStreamEmitter(w io.Writer) *StreamEmitter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &StreamEmitter{w: w, enc: enc}
}

// Emit writes one newline-terminated record.
func (e *StreamEmitter) Emit(rec render.Record) error {
	if err := e.enc.Encode(rec); err != nil {
		return err
	}
	if f, ok := e.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
