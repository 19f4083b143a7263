package httpwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerb_RoundTrip(t *testing.T) {
	tokens := []string{"GET", "HEAD", "POST", "PUT", "DELETE", "CONNECT", "OPTIONS", "TRACE", "PATCH"}
	require.Len(t, Verbs(), len(tokens))

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			verb, err := ParseVerb(token)
			require.NoError(t, err)
			assert.Equal(t, token, verb.String())
			assert.Equal(t, []byte(token), verb.Bytes())
		})
	}
}

func TestParseVerb_Rejects(t *testing.T) {
	for _, token := range []string{"", "get", "Post", " GET", "GET ", "GET\r\n", "BREW", "PROPFIND"} {
		t.Run(token, func(t *testing.T) {
			_, err := ParseVerb(token)
			require.Error(t, err)
			assert.Equal(t, KindMalformedRequest, KindOf(err))
		})
	}
}

func TestVerb_StringOutOfRange(t *testing.T) {
	assert.Equal(t, "UNKNOWN", Verb(42).String())
	assert.Equal(t, "UNKNOWN", Verb(-1).String())
}
