package cursor

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/janisto/huma-shared-libs/internal/platform/urlsafe"
)

func TestRoundTripNestedPayload(t *testing.T) {
	payload := map[string]any{
		"id":     "1",
		"name":   "apple",
		"sub":    map[string]any{"id": float64(1)},
		"array1": []any{"1", "2"},
		"array2": []any{
			map[string]any{"name": "hello"},
			map[string]any{"name": "world"},
		},
	}

	token, err := Encode(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, payload) {
		t.Fatalf("round trip mismatch:\nwant %#v\ngot  %#v", payload, got)
	}
}

func TestRoundTripScalars(t *testing.T) {
	for _, v := range []any{"plain", float64(42), true, nil, []any{}} {
		got, err := Decode(MustEncode(v))
		if err != nil {
			t.Fatalf("decode %v: %v", v, err)
		}
		if !reflect.DeepEqual(got, v) {
			t.Fatalf("expected %#v, got %#v", v, got)
		}
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode("should fail")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "is not valid JSON") {
		t.Fatalf("expected 'is not valid JSON' in %q", err.Error())
	}
	if !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
}

func TestDecodeValidBase64NotJSON(t *testing.T) {
	_, err := Decode(urlsafe.Encode("heyo"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "is not valid JSON") {
		t.Fatalf("expected 'is not valid JSON' in %q", err.Error())
	}
}

func TestDecodeInto(t *testing.T) {
	type position struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	token := MustEncode(position{ID: "abc", Name: "apple"})

	var got position
	if err := DecodeInto(token, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "abc" || got.Name != "apple" {
		t.Fatalf("unexpected cursor: %+v", got)
	}
}

func TestEncodeUnsupportedValue(t *testing.T) {
	if _, err := Encode(make(chan int)); err == nil {
		t.Fatal("expected error for channel value")
	}
}

func TestMustEncodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	_ = MustEncode(func() {})
}
