package pgwire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"rtasql/coltype"
)

// ResponseWriter accumulates one simple-query response (RowDescription,
// zero or more DataRow, then CommandComplete, or a single ErrorResponse)
// into a caller-supplied buffer. A write that would take the buffer past
// the configured ceiling is refused with ErrNoBuf and leaves the buffer
// unchanged, so the caller can Reset to its mark and report the
// "Output buffer full" error instead.
type ResponseWriter struct {
	buf *bytes.Buffer
	max int
}

// ErrNoBuf is returned by ResponseWriter methods once buf has grown past
// the writer's configured ceiling.
var ErrNoBuf = fmt.Errorf("pgwire: output buffer full")

// NewResponseWriter wraps buf, capping total growth at maxBytes.
func NewResponseWriter(buf *bytes.Buffer, maxBytes int) *ResponseWriter {
	return &ResponseWriter{buf: buf, max: maxBytes}
}

// Mark returns the writer's current position, to be passed to Reset if
// the in-progress statement aborts partway through writing its response.
func (w *ResponseWriter) Mark() int { return w.buf.Len() }

// Reset truncates the underlying buffer back to a position previously
// returned by Mark, discarding any partial response written since.
func (w *ResponseWriter) Reset(mark int) { w.buf.Truncate(mark) }

func (w *ResponseWriter) checkRoom(additional int) error {
	if w.max > 0 && w.buf.Len()+additional > w.max {
		return ErrNoBuf
	}
	return nil
}

// Field is one projected column of a RowDescription, carrying the
// synthesized table OID and the column's attribute number within its
// table alongside the column descriptor itself.
type Field struct {
	Col      *coltype.ColumnDef
	TableOID int32
	Attr     int16
}

// RowDescription writes a 'T' message describing fields, in projection
// order.
func (w *ResponseWriter) RowDescription(fields []Field) error {
	var body bytes.Buffer
	binary.Write(&body, binary.BigEndian, int16(len(fields)))
	for _, f := range fields {
		ti := typeFor(f.Col.Kind)
		body.WriteString(f.Col.Name)
		body.WriteByte(0)
		binary.Write(&body, binary.BigEndian, f.TableOID)
		binary.Write(&body, binary.BigEndian, f.Attr)
		binary.Write(&body, binary.BigEndian, uint32(ti.oid))
		binary.Write(&body, binary.BigEndian, ti.size)
		binary.Write(&body, binary.BigEndian, int32(-1)) // type modifier
		binary.Write(&body, binary.BigEndian, int16(0))  // text format
	}
	return w.writeMessage(msgRowDescription, body.Bytes())
}

// DataRow writes a 'D' message, one field per value, each rendered with
// Value.Format and sent as text.
func (w *ResponseWriter) DataRow(vals []coltype.Value) error {
	var body bytes.Buffer
	binary.Write(&body, binary.BigEndian, int16(len(vals)))
	for _, v := range vals {
		text := v.Format()
		binary.Write(&body, binary.BigEndian, int32(len(text)))
		body.WriteString(text)
	}
	return w.writeMessage(msgDataRow, body.Bytes())
}

// CommandComplete writes a 'C' message with the given tag, e.g.
// "SELECT 3" or "UPDATE 1".
func (w *ResponseWriter) CommandComplete(tag string) error {
	var body bytes.Buffer
	body.WriteString(tag)
	body.WriteByte(0)
	return w.writeMessage(msgCommandComplete, body.Bytes())
}

// EmptyQueryResponse writes an 'I' message for a statement with no
// recognizable content (e.g. an all-whitespace query string).
func (w *ResponseWriter) EmptyQueryResponse() error {
	return w.writeMessage(msgEmptyQueryResponse, nil)
}

// ErrorResponse writes an 'E' message carrying sev/code/msg as the
// S/C/M fields clients actually render, terminated by the required
// trailing NUL.
func (w *ResponseWriter) ErrorResponse(sev, code, msg string) error {
	var body bytes.Buffer
	writeField := func(tag byte, val string) {
		body.WriteByte(tag)
		body.WriteString(val)
		body.WriteByte(0)
	}
	writeField('S', sev)
	writeField('C', code)
	writeField('M', msg)
	body.WriteByte(0)
	return w.writeMessage(msgErrorResponse, body.Bytes())
}

// ReadyForQuery writes a 'Z' message reporting the idle transaction
// status; this dialect has no transactions, so the status is always 'I'.
func (w *ResponseWriter) ReadyForQuery() error {
	return w.writeMessage(msgReadyForQuery, []byte{'I'})
}

func (w *ResponseWriter) writeMessage(kind byte, body []byte) error {
	if err := w.checkRoom(1 + 4 + len(body)); err != nil {
		return err
	}
	w.buf.WriteByte(kind)
	binary.Write(w.buf, binary.BigEndian, int32(len(body)+4))
	w.buf.Write(body)
	return nil
}
