package twitter

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/buger/jsonparser"
)

// DefaultErrorCode is used when an error payload carries no numeric code.
const DefaultErrorCode = 99

// ErrMalformedJSON is the Err of a parse-failure Degraded record.
var ErrMalformedJSON = errors.New("malformed JSON")

// errShapeMismatch marks valid JSON that does not fit the requested shape.
var errShapeMismatch = errors.New("shape mismatch")

// ErrorRecord is a normalized upstream error payload.
type ErrorRecord struct {
	Raw `json:"-" yaml:"-"`

	Code    int    `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

func (e *ErrorRecord) Error() string {
	return fmt.Sprintf("twitter: %s (code %d)", e.Message, e.Code)
}

// ExtractError recognizes the two upstream error shapes:
//
//	{"errors": [{"message": "...", "code": 215}, ...]}
//	{"error": "..."}
//
// For "errors" the first element wins. A non-array "errors" value, or any
// "error" value, becomes the message with DefaultErrorCode. It returns nil
// when body is not an error payload.
func ExtractError(body []byte) *ErrorRecord {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil
	}

	if v, typ, _, err := jsonparser.Get(body, "errors"); err == nil {
		switch typ {
		case jsonparser.Array:
			if rec := firstError(v); rec != nil {
				rec.SetRawSource(string(body))
				return rec
			}
		case jsonparser.Null:
		default:
			rec := &ErrorRecord{Code: DefaultErrorCode, Message: valueString(v, typ)}
			rec.SetRawSource(string(body))
			return rec
		}
	}

	if v, typ, _, err := jsonparser.Get(body, "error"); err == nil && typ != jsonparser.Null {
		rec := &ErrorRecord{Code: DefaultErrorCode, Message: valueString(v, typ)}
		rec.SetRawSource(string(body))
		return rec
	}
	return nil
}

// firstError reads message and code from the first element of an errors array.
func firstError(arr []byte) *ErrorRecord {
	var rec *ErrorRecord
	_, _ = jsonparser.ArrayEach(arr, func(value []byte, typ jsonparser.ValueType, _ int, _ error) {
		if rec != nil {
			return
		}
		rec = &ErrorRecord{Code: DefaultErrorCode}
		if typ != jsonparser.Object {
			rec.Message = valueString(value, typ)
			return
		}
		if msg, err := jsonparser.GetString(value, "message"); err == nil {
			rec.Message = msg
		}
		if code, err := jsonparser.GetInt(value, "code"); err == nil {
			rec.Code = int(code)
		}
	})
	return rec
}

// valueString is the string form of a JSON value: unquoted for strings, the
// literal JSON text otherwise.
func valueString(v []byte, typ jsonparser.ValueType) string {
	if typ == jsonparser.String {
		if s, err := jsonparser.ParseString(v); err == nil {
			return s
		}
	}
	return string(v)
}

// errorClass categorizes Twitter API error responses for targeted handling.
type errorClass int

const (
	errNone          errorClass = iota
	errBanned                   // 88: rate limit abuse
	errSuspended                // 64: account suspended
	errLocked                   // 326: account locked (captcha needed)
	errCSRF                     // 353: csrf token mismatch
	errAuthExpired              // 32, 89, 215: could not authenticate
	errBlocked                  // 161: blocked from performing action
	errNotAuthorized            // 179, 219: not authorized
	errInternal                 // 131: Twitter internal error
	errOther                    // any other error payload
)

// classifyError maps the error payload in a response body, if any, to a class.
func classifyError(body []byte) errorClass {
	rec := ExtractError(body)
	if rec == nil {
		return errNone
	}
	switch rec.Code {
	case 88:
		return errBanned
	case 64:
		return errSuspended
	case 326:
		return errLocked
	case 353:
		return errCSRF
	case 32, 89, 215:
		return errAuthExpired
	case 161:
		return errBlocked
	case 179, 219:
		return errNotAuthorized
	case 131:
		return errInternal
	}
	return errOther
}

// parseRateLimitReset parses the X-Rate-Limit-Reset unix timestamp header.
// Falls back to 15 minutes from now if missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Now().Add(15 * time.Minute)
}
