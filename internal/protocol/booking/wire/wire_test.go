package wire

import (
	"bytes"
	"testing"
)

func TestStringRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	WriteString(buf, "Meeting Room A")

	d := NewDecoder(buf.Bytes())
	got, err := d.String()
	if err != nil {
		t.Fatalf("decode string: %v", err)
	}
	if got != "Meeting Room A" {
		t.Fatalf("got %q, want %q", got, "Meeting Room A")
	}
	if d.Remaining() != 0 {
		t.Fatalf("expected full consume, %d bytes left", d.Remaining())
	}
}

func TestStringLengthOverrun(t *testing.T) {
	// Length prefix claims 100 bytes but only 3 follow.
	data := []byte{0, 0, 0, 100, 'a', 'b', 'c'}
	d := NewDecoder(data)
	if _, err := d.String(); err == nil {
		t.Fatal("expected overrun error, got nil")
	}
}

func TestStringInvalidUTF8(t *testing.T) {
	data := []byte{0, 0, 0, 2, 0xFF, 0xFE}
	d := NewDecoder(data)
	if _, err := d.String(); err == nil {
		t.Fatal("expected UTF-8 error, got nil")
	}
}

func TestTimeTripleValidation(t *testing.T) {
	cases := []struct {
		triple TimeTriple
		valid  bool
	}{
		{TimeTriple{0, 0, 0}, true},
		{TimeTriple{6, 23, 59}, true},
		{TimeTriple{7, 0, 0}, true}, // exclusive week end
		{TimeTriple{7, 0, 1}, false},
		{TimeTriple{7, 1, 0}, false},
		{TimeTriple{8, 0, 0}, false},
		{TimeTriple{0, 24, 0}, false},
		{TimeTriple{0, 0, 60}, false},
	}
	for _, c := range cases {
		if got := c.triple.Valid(); got != c.valid {
			t.Errorf("Valid(%+v) = %v, want %v", c.triple, got, c.valid)
		}
	}
}

func TestTimeTripleOutOfRangeDecode(t *testing.T) {
	d := NewDecoder([]byte{0, 24, 0})
	if _, err := d.TimeTriple(); err == nil {
		t.Fatal("expected out-of-range error, got nil")
	}
}

func TestMinutesRoundTrip(t *testing.T) {
	for _, m := range []int{0, 1, 59, 60, 1439, 1440, 10079, 10080} {
		if got := TripleFromMinutes(m).Minutes(); got != m {
			t.Errorf("TripleFromMinutes(%d).Minutes() = %d", m, got)
		}
	}
}

func TestInt32RoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 30, -30, 2147483647, -2147483648} {
		buf := &bytes.Buffer{}
		WriteInt32(buf, v)
		d := NewDecoder(buf.Bytes())
		got, err := d.Int32()
		if err != nil {
			t.Fatalf("decode int32: %v", err)
		}
		if got != v {
			t.Errorf("got %d, want %d", got, v)
		}
	}
}

func TestRequestRoundTrip(t *testing.T) {
	requests := []Payload{
		QueryRequest{Facility: "Conference Hall", Days: []uint8{0, 2, 6}},
		QueryRequest{Facility: "", Days: nil},
		BookRequest{
			Facility: "Meeting Room A",
			Start:    TimeTriple{0, 9, 0},
			End:      TimeTriple{0, 10, 30},
		},
		ChangeRequest{ConfirmationID: "CONF000001", OffsetMinutes: -45},
		MonitorRequest{Facility: "Lecture Theatre 1", DurationSeconds: 60},
		ExtendRequest{ConfirmationID: "CONF000002", ExtraMinutes: 30},
		CancelRequest{ConfirmationID: "CONF000003"},
	}

	for i, req := range requests {
		data, err := EncodeRequest(uint32(1000+i), req)
		if err != nil {
			t.Fatalf("encode %T: %v", req, err)
		}

		op, id, got, err := DecodeRequest(data)
		if err != nil {
			t.Fatalf("decode %T: %v", req, err)
		}
		if op != req.Op() {
			t.Errorf("op = %d, want %d", op, req.Op())
		}
		if id != uint32(1000+i) {
			t.Errorf("request id = %d, want %d", id, 1000+i)
		}
		assertPayloadEqual(t, got, req)
	}
}

func TestReplyRoundTrip(t *testing.T) {
	replies := []Payload{
		QueryReply{Free: []Interval{
			{Start: TimeTriple{0, 0, 0}, End: TimeTriple{0, 9, 0}},
			{Start: TimeTriple{0, 11, 0}, End: TimeTriple{1, 0, 0}},
		}},
		QueryReply{},
		BookReply{ConfirmationID: "CONF000001"},
		ChangeReply{},
		MonitorReply{},
		ExtendReply{},
		CancelReply{},
		MonitorUpdate{Facility: "Seminar Room B", Free: []Interval{
			{Start: TimeTriple{0, 0, 0}, End: TimeTriple{7, 0, 0}},
		}},
		ErrorReply{Code: CodeConflict, Detail: "facility is not available during requested period"},
	}

	for _, rep := range replies {
		data, err := EncodeReply(rep)
		if err != nil {
			t.Fatalf("encode %T: %v", rep, err)
		}

		op, got, err := DecodeReply(data)
		if err != nil {
			t.Fatalf("decode %T: %v", rep, err)
		}
		if op != rep.Op() {
			t.Errorf("op = %d, want %d", op, rep.Op())
		}
		assertPayloadEqual(t, got, rep)
	}
}

func TestDecodeRequestUnknownOp(t *testing.T) {
	data := []byte{42, 0, 0, 0, 1}
	op, id, p, err := DecodeRequest(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op != 42 || id != 1 {
		t.Fatalf("envelope op=%d id=%d, want 42/1", op, id)
	}
	if p != nil {
		t.Fatalf("expected nil payload for unknown op, got %T", p)
	}
}

func TestDecodeRequestQueryDayOutOfRange(t *testing.T) {
	data, err := EncodeRequest(1, QueryRequest{Facility: "X", Days: []uint8{0, 9}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, _, _, err := DecodeRequest(data); err == nil {
		t.Fatal("expected day-range error, got nil")
	}
}

func TestDecodeTruncatedEnvelope(t *testing.T) {
	if _, _, _, err := DecodeRequest([]byte{}); err == nil {
		t.Fatal("expected error on empty datagram")
	}
	if _, _, _, err := DecodeRequest([]byte{1, 0, 0}); err == nil {
		t.Fatal("expected error on truncated request id")
	}
}

func TestErrorReplyWireLayout(t *testing.T) {
	data, err := EncodeReply(ErrorReply{Code: CodeNotFound, Detail: "no"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0xFF, CodeNotFound, 0, 0, 0, 2, 'n', 'o'}
	if !bytes.Equal(data, want) {
		t.Fatalf("wire bytes = % x, want % x", data, want)
	}
}

func TestBookRequestWireLayout(t *testing.T) {
	data, err := EncodeRequest(7, BookRequest{
		Facility: "A",
		Start:    TimeTriple{0, 9, 0},
		End:      TimeTriple{0, 10, 0},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{
		2, // BOOK
		0, 0, 0, 7, // request id
		0, 0, 0, 1, 'A', // facility
		0, 9, 0, // start
		0, 10, 0, // end
	}
	if !bytes.Equal(data, want) {
		t.Fatalf("wire bytes = % x, want % x", data, want)
	}
}

// assertPayloadEqual compares decoded and original payloads, treating nil
// and empty slices as equal.
func assertPayloadEqual(t *testing.T, got, want Payload) {
	t.Helper()

	switch w := want.(type) {
	case QueryRequest:
		g := got.(QueryRequest)
		if g.Facility != w.Facility || !bytes.Equal(g.Days, w.Days) {
			t.Errorf("got %+v, want %+v", g, w)
		}
	case QueryReply:
		g := got.(QueryReply)
		if !intervalsEqual(g.Free, w.Free) {
			t.Errorf("got %+v, want %+v", g, w)
		}
	case MonitorUpdate:
		g := got.(MonitorUpdate)
		if g.Facility != w.Facility || !intervalsEqual(g.Free, w.Free) {
			t.Errorf("got %+v, want %+v", g, w)
		}
	default:
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	}
}

func intervalsEqual(a, b []Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTimeTripleRendering(t *testing.T) {
	cases := []struct {
		triple TimeTriple
		str    string
		end    string
	}{
		{TimeTriple{Day: 0, Hour: 10, Minute: 30}, "Mon 10:30", "Mon 10:30"},
		{TimeTriple{Day: 1, Hour: 0, Minute: 0}, "Tue 00:00", "Mon 24:00"},
		{TimeTriple{Day: 7, Hour: 0, Minute: 0}, "Sun 24:00", "Sun 24:00"},
		{TimeTriple{Day: 6, Hour: 23, Minute: 59}, "Sun 23:59", "Sun 23:59"},
	}
	for _, c := range cases {
		if got := c.triple.String(); got != c.str {
			t.Errorf("String(%v) = %q, want %q", c.triple, got, c.str)
		}
		if got := c.triple.EndString(); got != c.end {
			t.Errorf("EndString(%v) = %q, want %q", c.triple, got, c.end)
		}
	}
}
