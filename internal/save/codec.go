package save

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	ErrBadEncoding        = errors.New("export is not valid base64")
	ErrBadDocument        = errors.New("export is not a valid save document")
	ErrMissingVersion     = errors.New("export has no version")
	ErrUnsupportedVersion = errors.New("export version is not supported")
	ErrMissingState       = errors.New("export has no state")
	ErrChecksumMismatch   = errors.New("export checksum mismatch")
)

// Envelope is the decoded export document.
type Envelope struct {
	Version  string          `json:"version"`
	Checksum uint32          `json:"checksum"`
	State    json.RawMessage `json:"state"`
}

// envelopeKeys are matched exactly; encoding/json alone would accept any casing.
var envelopeKeys = []string{"version", "checksum", "state"}

// Checksum is the byte sum, modulo 2^32, of the version string followed by the state bytes.
func Checksum(version string, state []byte) uint32 {
	var sum uint32
	for i := 0; i < len(version); i++ {
		sum += uint32(version[i])
	}
	for _, b := range state {
		sum += uint32(b)
	}
	return sum
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// Compatible reports whether an export written by version can be read by current.
func Compatible(version, current string) bool {
	v, c := canonicalVersion(version), canonicalVersion(current)
	if !semver.IsValid(v) || !semver.IsValid(c) {
		return false
	}
	return semver.Major(v) == semver.Major(c)
}

// Encode builds the base64 export of a JSON state document.
func Encode(version string, state []byte) (string, error) {
	if strings.TrimSpace(version) == "" {
		return "", ErrMissingVersion
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, state); err != nil {
		return "", fmt.Errorf("compact state: %w", err)
	}
	env := Envelope{
		Version:  version,
		Checksum: Checksum(version, compact.Bytes()),
		State:    compact.Bytes(),
	}
	b, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Decode validates an export against the running version and returns its envelope.
func Decode(blob, current string) (Envelope, error) {
	raw, err := base64.StdEncoding.Strict().DecodeString(strings.TrimSpace(blob))
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadEncoding, err)
	}

	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&fields); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	if dec.More() {
		return Envelope{}, fmt.Errorf("%w: trailing data", ErrBadDocument)
	}
	for k := range fields {
		if !slices.Contains(envelopeKeys, k) {
			return Envelope{}, fmt.Errorf("%w: unexpected field %q", ErrBadDocument, k)
		}
	}

	var version string
	if v, ok := fields["version"]; ok {
		if err := json.Unmarshal(v, &version); err != nil {
			return Envelope{}, fmt.Errorf("%w: version: %v", ErrBadDocument, err)
		}
	}
	if strings.TrimSpace(version) == "" {
		return Envelope{}, ErrMissingVersion
	}
	if !Compatible(version, current) {
		return Envelope{}, fmt.Errorf("%w: %s (running %s)", ErrUnsupportedVersion, version, current)
	}

	state := fields["state"]
	if len(state) == 0 || bytes.Equal(state, []byte("null")) {
		return Envelope{}, ErrMissingState
	}

	rawSum, ok := fields["checksum"]
	if !ok {
		return Envelope{}, fmt.Errorf("%w: missing", ErrChecksumMismatch)
	}
	var sum uint32
	if err := json.Unmarshal(rawSum, &sum); err != nil {
		return Envelope{}, fmt.Errorf("%w: checksum: %v", ErrBadDocument, err)
	}
	if got := Checksum(version, state); got != sum {
		return Envelope{}, fmt.Errorf("%w: have %d, computed %d", ErrChecksumMismatch, sum, got)
	}
	return Envelope{Version: version, Checksum: sum, State: state}, nil
}
