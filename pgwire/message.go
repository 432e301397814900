// Package pgwire speaks enough of the PostgreSQL v3 frontend/backend
// protocol to serve psql and the common client libraries against the
// engine: startup handshake, simple query, and orderly termination.
package pgwire

// Frontend/backend message type bytes, as defined by the protocol.
const (
	msgQuery     = 'Q'
	msgTerminate = 'X'

	msgAuthOK             = 'R'
	msgParameterStatus    = 'S'
	msgBackendKeyData     = 'K'
	msgReadyForQuery      = 'Z'
	msgRowDescription     = 'T'
	msgDataRow            = 'D'
	msgCommandComplete    = 'C'
	msgErrorResponse      = 'E'
	msgSSLResponseNo      = 'N'
	msgEmptyQueryResponse = 'I'
)

// Protocol/startup constants from the v3 handshake.
const (
	sslRequestCode  = 0x04d2162f
	cancelRequestID = 80877102
	startupProtocol = 0x00030000
)

// Outcome is the result of feeding one chunk of bytes to the framer.
type Outcome int

const (
	// Success means exactly one complete packet was consumed and any
	// response bytes it produced (for a query, that statement's whole
	// response) were appended to the output buffer.
	Success Outcome = iota
	// NoCompleteCommand means the input did not yet contain a full
	// packet; no bytes were consumed and the caller should accumulate
	// more input before calling again.
	NoCompleteCommand
	// Close means the client requested (or the framer inferred) an
	// orderly close of the connection.
	Close
	// NoBuf means the output buffer did not have room for the response;
	// the statement was aborted, matching EFullBuf.
	NoBuf
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case NoCompleteCommand:
		return "no_complete_cmd"
	case Close:
		return "close"
	case NoBuf:
		return "no_buf"
	default:
		return "unknown"
	}
}
