// Package transfer moves encounter and library snapshots between devices as
// opaque strings: payloads are wrapped in an origin-tagged envelope, encoded
// to compact CBOR, base64'd, and signed with HMAC-SHA256.
//
// The signing key ships inside the application, so the signature is a
// tamper-detection checksum, not a security boundary: it tells a careless
// paste apart from a complete one, nothing more.
package transfer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Origin tags an export with the kind of data inside, so a library export
// can never be imported as an encounter and vice versa.
type Origin string

const (
	OriginSession Origin = "session"
	OriginLibrary Origin = "library"
)

// signingKey is the fixed bundled key for the integrity checksum.
const signingKey = "enctrack-export-integrity-v1"

// Import failure kinds. Each maps to a distinct user-legible message via
// UserMessage so the caller can tell which step of the pipeline failed.
var (
	// ErrMalformedEnvelope: the input cannot be split into a signature
	// segment and a data segment.
	ErrMalformedEnvelope = errors.New("malformed export envelope")
	// ErrIntegrityFailure: the signature does not match the data.
	ErrIntegrityFailure = errors.New("export signature mismatch")
	// ErrDecodeFailure: the data segment is not valid base64 or CBOR.
	ErrDecodeFailure = errors.New("export data cannot be decoded")
	// ErrSchemaMismatch: the decoded envelope or payload has the wrong
	// shape.
	ErrSchemaMismatch = errors.New("export data does not match the expected schema")
	// ErrOriginMismatch: the envelope carries a different export kind
	// than the importer expected.
	ErrOriginMismatch = errors.New("export origin mismatch")
)

// Payload is any snapshot type the codec can carry. Validation runs on
// import before the payload is returned to the caller.
type Payload interface {
	Validate() error
}

// envelope is the outer shape that gets serialized and signed.
type envelope struct {
	Origin  Origin          `json:"origin"`
	Payload cbor.RawMessage `json:"payload"`
}

// Export wraps a payload in an origin-tagged envelope and returns the
// portable string form "<64-hex-hmac>.<base64 cbor envelope>". It is
// deterministic for a given payload.
func Export(origin Origin, payload any) (string, error) {
	raw, err := cbor.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	blob, err := cbor.Marshal(envelope{Origin: origin, Payload: raw})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(blob)
	return sign(encoded) + "." + encoded, nil
}

// ExportBytes returns the UTF-8 bytes of the export string, for writing to
// a file. A byte export decodes identically to the string export of the
// same payload.
func ExportBytes(origin Origin, payload any) ([]byte, error) {
	s, err := Export(origin, payload)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Import verifies, decodes and validates an export string, returning the
// typed payload. It never touches live state; applying the result is the
// caller's move.
func Import[T Payload](raw string, expected Origin) (T, error) {
	var zero T

	mac, encoded, found := strings.Cut(strings.TrimSpace(raw), ".")
	if !found || mac == "" || encoded == "" {
		return zero, ErrMalformedEnvelope
	}

	if !hmac.Equal([]byte(sign(encoded)), []byte(mac)) {
		return zero, ErrIntegrityFailure
	}

	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	var env envelope
	if err := cbor.Unmarshal(blob, &env); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}

	switch env.Origin {
	case OriginSession, OriginLibrary:
	default:
		return zero, fmt.Errorf("%w: unknown origin %q", ErrSchemaMismatch, env.Origin)
	}
	if len(env.Payload) == 0 {
		return zero, fmt.Errorf("%w: envelope has no payload", ErrSchemaMismatch)
	}
	if env.Origin != expected {
		return zero, fmt.Errorf("%w: got %q, expected %q", ErrOriginMismatch, env.Origin, expected)
	}

	var payload T
	if err := cbor.Unmarshal(env.Payload, &payload); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if err := payload.Validate(); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return payload, nil
}

// ImportBytes is the file-oriented counterpart of Import.
func ImportBytes[T Payload](raw []byte, expected Origin) (T, error) {
	return Import[T](string(raw), expected)
}

// UserMessage maps an import failure to the short message shown to the
// user. Unknown errors get a generic fallback.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrMalformedEnvelope):
		return "The pasted text is incomplete. Copy the whole export string and try again."
	case errors.Is(err, ErrIntegrityFailure):
		return "This data may have been altered since it was exported."
	case errors.Is(err, ErrDecodeFailure):
		return "This text could not be read as export data."
	case errors.Is(err, ErrSchemaMismatch):
		return "This export does not contain the expected data."
	case errors.Is(err, ErrOriginMismatch):
		return "This looks like a different export type."
	default:
		return "The import failed."
	}
}

func sign(data string) string {
	mac := hmac.New(sha256.New, []byte(signingKey))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
