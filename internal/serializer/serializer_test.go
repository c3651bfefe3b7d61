package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_SortsKeysAndNormalizes(t *testing.T) {
	payload := map[string]any{
		"b":          int64(2),
		"a":          []any{"x", true, 3},
		"cafe\u0301": "cafe\u0301", // decomposed
		"<&>":        "<tag>",
	}

	got, err := Marshal(payload)
	require.NoError(t, err)
	assert.Equal(t, "{\"<&>\":\"<tag>\",\"a\":[\"x\",true,3],\"b\":2,\"caf\u00e9\":\"caf\u00e9\"}", string(got))
}

func TestMarshal_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as a surrogate pair (0xD83D...), which sorts before
	// U+FF61 in UTF-16 but after it in UTF-8.
	payload := map[string]any{"｡": int64(1), "\U0001F600": int64(2)}

	got, err := Marshal(payload)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"｡\":1}", string(got))
}

func TestMarshal_EscapesControlCharacters(t *testing.T) {
	got, err := Marshal("a\"b\\c\nd\x01")
	require.NoError(t, err)
	assert.Equal(t, `"a\"b\\c\nd\u0001"`, string(got))
}

func TestMarshal_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"null", nil},
		{"float", 1.5},
		{"nested float", map[string]any{"x": []any{float32(1)}}},
		{"struct", struct{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Marshal(tt.value)
			assert.Error(t, err)
		})
	}
}

func TestUnmarshal(t *testing.T) {
	got, err := Unmarshal([]byte(`{"n":42,"tags":["a"],"ok":false}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"n":    int64(42),
		"tags": []any{"a"},
		"ok":   false,
	}, got)

	_, err = Unmarshal([]byte(`{"n":4.2}`))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`{"n":null}`))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`{"n":1} {}`))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`not json`))
	assert.Error(t, err)
}

func TestJSON_RoundTrip(t *testing.T) {
	ev := Event{
		PersistenceID: "order-1",
		SequenceNr:    3,
		Payload:       map[string]any{"item": "book", "qty": int64(2)},
		Tags:          []string{"orders"},
		WriterUUID:    "w-1",
		Timestamp:     1700000000000,
	}

	row, err := JSON{}.Serialize(ev)
	require.NoError(t, err)
	assert.Equal(t, DefaultManifest, row.Manifest)
	assert.Equal(t, `{"item":"book","qty":2}`, string(row.Message))

	row.Ordering = 17
	got, err := JSON{}.Deserialize(row)
	require.NoError(t, err)

	ev.Manifest = DefaultManifest
	ev.Ordering = 17
	assert.Equal(t, ev, got)
}

func TestJSON_SerializeRejectsInvalidRow(t *testing.T) {
	_, err := JSON{}.Serialize(Event{PersistenceID: "p", SequenceNr: 0, Payload: "x"})
	assert.Error(t, err)

	_, err = JSON{}.Serialize(Event{PersistenceID: "p", SequenceNr: 1, Payload: "x", Tags: []string{"a;b"}})
	assert.Error(t, err)

	_, err = JSON{}.Serialize(Event{PersistenceID: "p", SequenceNr: 1, Payload: 0.5})
	assert.Error(t, err)
}
