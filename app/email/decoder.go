package email

import (
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

var ErrParse = errors.New("the email could not be parsed")

// ParseError reports a request body that cannot be turned into text.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrParse, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrParse, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Run turns a raw request body into UTF-8 text, honouring the charset
// parameter of contentType when present.
func (d *Decoder) Run(body []byte, contentType string) (string, error) {
	charset := charsetOf(contentType)

	if charset != "" && !isUTF8(charset) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return "", &ParseError{Reason: fmt.Sprintf("unsupported charset %q", charset), Err: err}
		}

		decoded, err := enc.NewDecoder().Bytes(body)
		if err != nil {
			return "", &ParseError{Reason: fmt.Sprintf("failed to decode %s body", charset), Err: err}
		}
		body = decoded
	}

	if !utf8.Valid(body) {
		return "", &ParseError{Reason: "body is not valid UTF-8 text"}
	}

	return string(body), nil
}

func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(params["charset"])
}

func isUTF8(charset string) bool {
	switch strings.ToLower(charset) {
	case "utf-8", "utf8":
		return true
	}
	return false
}
