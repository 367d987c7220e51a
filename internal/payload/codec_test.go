package payload

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		record := map[string]any{
			"userId":        "u1",
			"transactionId": "t1",
			"awsWafToken":   nil,
			"pageUrl":       "https://example.com/appointment?x=1&y=2",
		}

		encoded, err := Encode(record)
		require.NoError(t, err)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, record, decoded)
	})

	t.Run("output is query-safe", func(t *testing.T) {
		encoded, err := Encode(map[string]any{
			"pageUrl": "https://example.com/?a=b&c=d e+f",
			"note":    "ключ/قيمة",
		})
		require.NoError(t, err)
		assert.Equal(t, encoded, url.QueryEscape(encoded))
	})

	t.Run("accepts padded standard base64", func(t *testing.T) {
		// What the legacy extension sends: btoa(JSON.stringify(...)).
		decoded, err := Decode("eyJ1c2VySWQiOiJ1MSJ9")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"userId": "u1"}, decoded)
	})

	t.Run("rejects bad base64", func(t *testing.T) {
		_, err := Decode("%%%not-base64%%%")
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("rejects valid base64 of invalid json", func(t *testing.T) {
		_, err := Decode("bm90LWpzb24")
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("rejects json that is not an object", func(t *testing.T) {
		// base64("[1,2,3]")
		_, err := Decode("WzEsMiwzXQ")
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}
