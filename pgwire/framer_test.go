package pgwire

import (
	"bytes"
	"encoding/binary"
	"testing"
)

type fakeExecutor struct {
	err error
}

func (f fakeExecutor) Exec(sql string, w *ResponseWriter) error {
	if f.err != nil {
		return f.err
	}
	return w.CommandComplete("SELECT 0")
}

func TestFeedStartupSSLRequest(t *testing.T) {
	f := NewFramer()
	req := []byte{0x00, 0x00, 0x00, 0x08, 0x04, 0xd2, 0x16, 0x2f}
	var out bytes.Buffer
	outcome, consumed, err := f.Feed(req, &out, fakeExecutor{}, 0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if outcome != Success || consumed != 8 {
		t.Errorf("outcome=%v consumed=%d, want Success/8", outcome, consumed)
	}
	if out.Len() != 1 || out.Bytes()[0] != 'N' {
		t.Errorf("out = % x, want a single 'N' byte", out.Bytes())
	}
	if f.started {
		t.Error("an SSL negotiation must not flip the framer into started state")
	}
}

func TestFeedStartupRealHandshake(t *testing.T) {
	f := NewFramer()
	var body bytes.Buffer
	binary.Write(&body, binary.BigEndian, uint32(startupProtocol))
	body.WriteString("user")
	body.WriteByte(0)
	body.WriteString("postgres")
	body.WriteByte(0)
	body.WriteByte(0)

	var pkt bytes.Buffer
	binary.Write(&pkt, binary.BigEndian, int32(4+body.Len()))
	pkt.Write(body.Bytes())

	authCalled := false
	f.OnAuth = func() { authCalled = true }

	var out bytes.Buffer
	outcome, consumed, err := f.Feed(pkt.Bytes(), &out, fakeExecutor{}, 0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if outcome != Success || consumed != pkt.Len() {
		t.Errorf("outcome=%v consumed=%d, want Success/%d", outcome, consumed, pkt.Len())
	}
	if !f.started {
		t.Error("framer should be started after a real startup packet")
	}
	if !authCalled {
		t.Error("OnAuth should fire once the handshake completes")
	}
	if out.Bytes()[0] != msgAuthOK {
		t.Errorf("first response byte = %q, want AuthenticationOk", out.Bytes()[0])
	}
	// AuthenticationOk + five ParameterStatus entries + BackendKeyData +
	// ReadyForQuery, bit-for-bit compatible with a PG 7.4 greeting.
	if out.Len() != 164 {
		t.Errorf("canned greeting is %d bytes, want 164", out.Len())
	}
	if b := out.Bytes(); b[len(b)-6] != msgReadyForQuery || b[len(b)-1] != 'I' {
		t.Error("greeting must end with ReadyForQuery('I')")
	}
}

func TestFeedStartupIncompleteInputIsLazy(t *testing.T) {
	f := NewFramer()
	var out bytes.Buffer
	outcome, consumed, err := f.Feed([]byte{0x00, 0x00}, &out, fakeExecutor{}, 0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if outcome != NoCompleteCommand || consumed != 0 {
		t.Errorf("outcome=%v consumed=%d, want NoCompleteCommand/0", outcome, consumed)
	}
	if out.Len() != 0 {
		t.Error("no bytes should be written for an incomplete packet")
	}
}

func startedFramer() *Framer {
	f := NewFramer()
	f.started = true
	return f
}

func TestFeedQueryIncompleteInputIsLazy(t *testing.T) {
	f := startedFramer()
	var out bytes.Buffer
	outcome, consumed, err := f.Feed([]byte{'Q', 0, 0, 0}, &out, fakeExecutor{}, 1<<20)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if outcome != NoCompleteCommand || consumed != 0 {
		t.Errorf("outcome=%v consumed=%d, want NoCompleteCommand/0", outcome, consumed)
	}
}

func buildQueryPacket(sql string) []byte {
	var body bytes.Buffer
	body.WriteString(sql)
	body.WriteByte(0)
	var pkt bytes.Buffer
	pkt.WriteByte('Q')
	binary.Write(&pkt, binary.BigEndian, int32(4+body.Len()))
	pkt.Write(body.Bytes())
	return pkt.Bytes()
}

func TestFeedQuerySuccess(t *testing.T) {
	f := startedFramer()
	pkt := buildQueryPacket("SELECT * FROM widgets")
	var out bytes.Buffer
	outcome, consumed, err := f.Feed(pkt, &out, fakeExecutor{}, 1<<20)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if outcome != Success || consumed != len(pkt) {
		t.Errorf("outcome=%v consumed=%d, want Success/%d", outcome, consumed, len(pkt))
	}
	if out.Bytes()[0] != msgCommandComplete {
		t.Errorf("first response byte = %q, want 'C'", out.Bytes()[0])
	}
	if out.Bytes()[len(out.Bytes())-1] != 'I' {
		t.Error("a successful query response must end with ReadyForQuery('I')")
	}
}

func TestFeedQueryExecErrorProducesErrorResponseNotPartial(t *testing.T) {
	f := startedFramer()
	boom := &boomErr{}
	pkt := buildQueryPacket("SELECT * FROM widgets")
	var out bytes.Buffer
	outcome, consumed, err := f.Feed(pkt, &out, fakeExecutor{err: boom}, 1<<20)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if outcome != Success || consumed != len(pkt) {
		t.Errorf("outcome=%v consumed=%d", outcome, consumed)
	}
	if out.Bytes()[0] != msgErrorResponse {
		t.Errorf("first response byte = %q, want 'E' (no partial response on exec error)", out.Bytes()[0])
	}
}

func TestFeedQueryTerminateClosesConnection(t *testing.T) {
	f := startedFramer()
	var pkt bytes.Buffer
	pkt.WriteByte('X')
	binary.Write(&pkt, binary.BigEndian, int32(4))
	var out bytes.Buffer
	outcome, consumed, err := f.Feed(pkt.Bytes(), &out, fakeExecutor{}, 1<<20)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if outcome != Close || consumed != pkt.Len() {
		t.Errorf("outcome=%v consumed=%d, want Close/%d", outcome, consumed, pkt.Len())
	}
}

type boomErr struct{}

func (*boomErr) Error() string { return "boom" }
