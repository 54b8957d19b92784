package warcrec

import (
	"errors"
	"testing"
)

func minimalHeader(kind string) *Header {
	h := NewHeader()
	h.Set(WarcType, kind)
	h.Set(WarcRecordID, "<urn:uuid:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee>")
	h.Set(WarcDate, "2024-03-01T12:00:00Z")
	h.Set(ContentLength, "0")
	return h
}

func TestValidateAcceptsMinimalMetadataRecord(t *testing.T) {
	r := NewRecord(V1_1, minimalHeader(TypeMetadata), nil)
	if err := validate(r); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRequiresTargetURIOnCaptureTypes(t *testing.T) {
	for _, kind := range []string{TypeResponse, TypeResource, TypeRevisit} {
		r := NewRecord(V1_1, minimalHeader(kind), nil)
		if err := validate(r); !errors.Is(err, ErrInvariant) {
			t.Fatalf("%s: validate() = %v; want ErrInvariant for missing WARC-Target-URI", kind, err)
		}

		h := minimalHeader(kind)
		h.Set(WarcTargetURI, "http://example.org/")
		r = NewRecord(V1_1, h, nil)
		if err := validate(r); err != nil {
			t.Fatalf("%s: validate() with target URI present = %v", kind, err)
		}
	}
}

func TestValidateDoesNotRequireTargetURIOnMetadata(t *testing.T) {
	r := NewRecord(V1_1, minimalHeader(TypeMetadata), nil)
	if err := validate(r); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejectsMissingMandatoryHeaders(t *testing.T) {
	h := minimalHeader(TypeWarcinfo)
	h.Del(WarcDate)
	r := NewRecord(V1_1, h, nil)
	if err := validate(r); !errors.Is(err, ErrInvariant) {
		t.Fatalf("validate() with missing WARC-Date = %v; want ErrInvariant", err)
	}
}

func TestTruncatedClosedSet(t *testing.T) {
	h := minimalHeader(TypeWarcinfo)
	h.Set(WarcTruncated, "length")
	r := NewRecord(V1_1, h, nil)
	reason, ok, err := r.Truncated()
	if err != nil || !ok || reason != "length" {
		t.Fatalf("Truncated() = %q, %v, %v", reason, ok, err)
	}

	h2 := minimalHeader(TypeWarcinfo)
	h2.Set(WarcTruncated, "not-a-real-reason")
	r2 := NewRecord(V1_1, h2, nil)
	if _, _, err := r2.Truncated(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("Truncated() with bad reason = %v; want ErrInvariant", err)
	}

	h3 := minimalHeader(TypeWarcinfo)
	r3 := NewRecord(V1_1, h3, nil)
	if _, ok, err := r3.Truncated(); ok || err != nil {
		t.Fatalf("Truncated() when absent = %v, %v; want false, nil", ok, err)
	}
}

func TestSegmentNumberMustBePositive(t *testing.T) {
	h := minimalHeader(TypeContinuation)
	h.Set(WarcSegmentNumber, "0")
	r := NewRecord(V1_1, h, nil)
	if _, _, err := r.SegmentNumber(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("SegmentNumber() = %v; want ErrInvariant for 0", err)
	}

	h2 := minimalHeader(TypeContinuation)
	h2.Set(WarcSegmentNumber, "2")
	r2 := NewRecord(V1_1, h2, nil)
	n, ok, err := r2.SegmentNumber()
	if err != nil || !ok || n != 2 {
		t.Fatalf("SegmentNumber() = %d, %v, %v", n, ok, err)
	}
}

func TestDispatchSelectsTypedVariant(t *testing.T) {
	r := NewRecord(V1_1, minimalHeader(TypeResponse), nil)
	r.header.Set(WarcTargetURI, "http://example.org/")

	v, err := Dispatch(r)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if _, ok := v.(ResponseRecord); !ok {
		t.Fatalf("Dispatch() = %T; want ResponseRecord", v)
	}
}

func TestDispatchUnknownType(t *testing.T) {
	r := NewRecord(V1_1, minimalHeader("future-type"), nil)
	v, err := Dispatch(r)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	u, ok := v.(UnknownRecord)
	if !ok || u.Tag != "future-type" {
		t.Fatalf("Dispatch() = %+v; want UnknownRecord{Tag: future-type}", v)
	}
}

func TestRecordIDStripsAngleBrackets(t *testing.T) {
	r := NewRecord(V1_1, minimalHeader(TypeWarcinfo), nil)
	id, err := r.RecordID()
	if err != nil {
		t.Fatalf("RecordID: %v", err)
	}
	if id != "urn:uuid:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee" {
		t.Fatalf("RecordID() = %q", id)
	}
}
