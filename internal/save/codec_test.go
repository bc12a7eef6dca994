package save

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testState = `{
  "player_id": "p1",
  "balances": {"wallet": 100, "bank": 50, "stash": 0},
  "profile": {"username": "alex", "level": 3}
}`

func TestEncodeDecode_RoundTrip(t *testing.T) {
	blob, err := Encode("1.4.0", []byte(testState))
	require.NoError(t, err)

	env, err := Decode(blob, "1.9.2")
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", env.Version)
	assert.JSONEq(t, testState, string(env.State))
	assert.Equal(t, Checksum("1.4.0", env.State), env.Checksum)
}

func TestDecode_AnySingleByteTamperFails(t *testing.T) {
	blob, err := Encode("1.4.0", []byte(testState))
	require.NoError(t, err)

	for i := 0; i < len(blob); i++ {
		for _, c := range []byte{'A', 'z', '+', '0', '='} {
			if blob[i] == c {
				continue
			}
			b := []byte(blob)
			b[i] = c
			_, err := Decode(string(b), "1.4.0")
			require.Error(t, err, "tamper at %d with %q", i, c)
		}
	}
}

func TestDecode_Rejections(t *testing.T) {
	wrap := func(doc string) string { return base64.StdEncoding.EncodeToString([]byte(doc)) }
	state := `{"a":1}`
	sum := Checksum("1.0.0", []byte(state))
	good := func(version string, checksum uint32) string {
		b, _ := json.Marshal(map[string]any{"version": version, "checksum": checksum, "state": json.RawMessage(state)})
		return string(b)
	}

	cases := []struct {
		name string
		blob string
		want error
	}{
		{"not base64", "%%%not-base64%%%", ErrBadEncoding},
		{"not json", wrap("hello"), ErrBadDocument},
		{"trailing data", wrap(good("1.0.0", sum) + "{}"), ErrBadDocument},
		{"unknown field", wrap(`{"version":"1.0.0","checksum":1,"state":{},"extra":1}`), ErrBadDocument},
		{"wrong key case", wrap(`{"Version":"1.0.0","checksum":1,"state":{}}`), ErrBadDocument},
		{"empty version", wrap(`{"version":"","checksum":1,"state":{}}`), ErrMissingVersion},
		{"future major", wrap(good("2.0.0", Checksum("2.0.0", []byte(state)))), ErrUnsupportedVersion},
		{"garbage version", wrap(good("banana", Checksum("banana", []byte(state)))), ErrUnsupportedVersion},
		{"missing state", wrap(`{"version":"1.0.0","checksum":1}`), ErrMissingState},
		{"null state", wrap(`{"version":"1.0.0","checksum":1,"state":null}`), ErrMissingState},
		{"missing checksum", wrap(`{"version":"1.0.0","state":{"a":1}}`), ErrChecksumMismatch},
		{"wrong checksum", wrap(good("1.0.0", sum+1)), ErrChecksumMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.blob, "1.4.0")
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := Decode(wrap(good("1.0.0", sum)), "1.4.0")
	assert.NoError(t, err)
}

func TestEncode_RequiresVersionAndJSON(t *testing.T) {
	_, err := Encode("", []byte(`{}`))
	assert.ErrorIs(t, err, ErrMissingVersion)
	_, err = Encode("1.0.0", []byte(`{nope`))
	assert.Error(t, err)
}

func TestChecksum_IsAdditive(t *testing.T) {
	assert.Equal(t, uint32('1'+'a'+'b'), Checksum("1", []byte("ab")))
	assert.Zero(t, Checksum("", nil))
}

func TestCompatible(t *testing.T) {
	assert.True(t, Compatible("1.0.0", "1.4.0"))
	assert.True(t, Compatible("v1.2.3", "1.4.0"))
	assert.False(t, Compatible("2.0.0", "1.4.0"))
	assert.False(t, Compatible("x", "1.4.0"))
}
