package email

import (
	"errors"
	"testing"
)

func TestDecoder_PlainUTF8(t *testing.T) {
	body := []byte(`<img src="café.jpg">`)

	got, err := NewDecoder().Run(body, "text/html")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != string(body) {
		t.Errorf("Expected '%s', got '%s'", string(body), got)
	}
}

func TestDecoder_NoContentType(t *testing.T) {
	got, err := NewDecoder().Run([]byte("hello"), "")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "hello" {
		t.Errorf("Expected 'hello', got '%s'", got)
	}
}

func TestDecoder_EmptyBody(t *testing.T) {
	got, err := NewDecoder().Run(nil, "text/html; charset=utf-8")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty string, got '%s'", got)
	}
}

func TestDecoder_Latin1(t *testing.T) {
	// "café" in ISO-8859-1
	body := []byte{'c', 'a', 'f', 0xe9}

	got, err := NewDecoder().Run(body, "text/html; charset=ISO-8859-1")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "café" {
		t.Errorf("Expected 'café', got '%s'", got)
	}
}

func TestDecoder_InvalidUTF8(t *testing.T) {
	_, err := NewDecoder().Run([]byte{0xff, 0xfe, 0xfd}, "text/html")

	if err == nil {
		t.Fatal("Expected error for binary body")
	}
	if !errors.Is(err, ErrParse) {
		t.Errorf("Expected ErrParse, got: %v", err)
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected *ParseError, got %T", err)
	}
}

func TestDecoder_UnknownCharset(t *testing.T) {
	_, err := NewDecoder().Run([]byte("hi"), "text/html; charset=klingon")

	if !errors.Is(err, ErrParse) {
		t.Errorf("Expected ErrParse, got: %v", err)
	}
}

func TestDecoder_MalformedContentTypeFallsBackToUTF8(t *testing.T) {
	got, err := NewDecoder().Run([]byte("ok"), "text/html; charset")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "ok" {
		t.Errorf("Expected 'ok', got '%s'", got)
	}
}
