package pgwire

import (
	"bytes"
	"encoding/binary"
)

// QueryExecutor runs one SQL statement and writes its response directly
// onto w (RowDescription/DataRow/CommandComplete on success). engine.Engine
// implements this; pgwire depends on it only through this interface so
// the wire framer never imports the executor.
type QueryExecutor interface {
	Exec(sql string, w *ResponseWriter) error
}

// fullBufMessage is the wire-level text for an output buffer that ran
// out of room mid-statement.
const fullBufMessage = "Output buffer full"

// canned greeting parameter-status entries, in the order the startup
// handshake sends them.
var startupParams = [][2]string{
	{"client_encoding", "SQL_ASCII"},
	{"DateStyle", "ISO, MDY"},
	{"is_superuser", "on"},
	{"server_version", "7.4"},
	{"session_authorization", "postgres"},
}

// Framer holds the per-connection handshake state of the v3 protocol: the
// first packet from a fresh connection has no leading type byte, and
// until a startup packet completes the handshake, the connection is not
// yet eligible for query-time packets. An SSL request is answered but
// leaves the connection in the pre-startup state.
type Framer struct {
	started bool

	// OnAuth, if set, is called once when the startup handshake
	// completes, letting the host bump its connection-accepted counter.
	OnAuth func()
}

// NewFramer returns a Framer in the pre-startup state.
func NewFramer() *Framer { return &Framer{} }

// Feed consumes one complete frontend packet from in and appends the
// corresponding response to out, using exec to run any query payload.
// It returns the outcome and the number of bytes of in actually
// consumed; on NoCompleteCommand that count is always 0 and the caller
// should retry once more bytes have arrived.
func (f *Framer) Feed(in []byte, out *bytes.Buffer, exec QueryExecutor, maxOutBytes int) (Outcome, int, error) {
	if !f.started {
		return f.feedStartup(in, out)
	}
	return f.feedQuery(in, out, exec, maxOutBytes)
}

func (f *Framer) feedStartup(in []byte, out *bytes.Buffer) (Outcome, int, error) {
	if len(in) < 4 {
		return NoCompleteCommand, 0, nil
	}
	length := int(binary.BigEndian.Uint32(in[0:4]))
	if length < 4 || len(in) < length {
		return NoCompleteCommand, 0, nil
	}
	body := in[4:length]

	if length == 8 && len(body) == 4 && binary.BigEndian.Uint32(body) == sslRequestCode {
		out.WriteByte(msgSSLResponseNo)
		return Success, length, nil
	}
	if length == 16 && len(body) >= 4 && binary.BigEndian.Uint32(body) == cancelRequestID {
		return Success, length, nil
	}
	if len(body) >= 4 && binary.BigEndian.Uint32(body) == startupProtocol {
		f.writeCannedGreeting(out)
		f.started = true
		if f.OnAuth != nil {
			f.OnAuth()
		}
		return Success, length, nil
	}
	// Anything else pre-startup: consume the length and continue, per
	// the framer's defensive handling of packets it doesn't recognize.
	return Success, length, nil
}

func (f *Framer) writeCannedGreeting(out *bytes.Buffer) {
	writeMsg := func(kind byte, body []byte) {
		out.WriteByte(kind)
		binary.Write(out, binary.BigEndian, int32(len(body)+4))
		out.Write(body)
	}

	// AuthenticationOk: int32 code 0.
	writeMsg(msgAuthOK, []byte{0, 0, 0, 0})

	for _, kv := range startupParams {
		var body bytes.Buffer
		body.WriteString(kv[0])
		body.WriteByte(0)
		body.WriteString(kv[1])
		body.WriteByte(0)
		writeMsg(msgParameterStatus, body.Bytes())
	}

	// BackendKeyData: process ID and secret key, both arbitrary since
	// this dialect never honors a cancel request's secret.
	var keyData bytes.Buffer
	binary.Write(&keyData, binary.BigEndian, int32(0))
	binary.Write(&keyData, binary.BigEndian, int32(0))
	writeMsg(msgBackendKeyData, keyData.Bytes())

	writeMsg(msgReadyForQuery, []byte{'I'})
}

func (f *Framer) feedQuery(in []byte, out *bytes.Buffer, exec QueryExecutor, maxOutBytes int) (Outcome, int, error) {
	if len(in) < 5 {
		return NoCompleteCommand, 0, nil
	}
	kind := in[0]
	length := int(binary.BigEndian.Uint32(in[1:5]))
	if length < 4 {
		// A malformed length; treat the same as an unrecognized packet
		// and close rather than risk an infinite stall.
		return Close, 0, nil
	}
	total := 1 + length // type byte plus the length-prefixed body
	if len(in) < total {
		return NoCompleteCommand, 0, nil
	}
	body := in[5:total]

	switch kind {
	case msgQuery:
		sql := string(bytes.TrimRight(body, "\x00"))
		w := NewResponseWriter(out, maxOutBytes)
		mark := w.Mark()
		if err := exec.Exec(sql, w); err != nil {
			w.Reset(mark)
			msg := err.Error()
			if err == ErrNoBuf {
				msg = fullBufMessage
			}
			if werr := w.ErrorResponse("SERROR", "42601", msg); werr != nil {
				return NoBuf, total, nil
			}
		}
		w.ReadyForQuery()
		return Success, total, nil

	case msgTerminate:
		return Close, total, nil

	default:
		return Close, total, nil
	}
}
