package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_SortsKeys(t *testing.T) {
	data, err := Marshal(map[string]any{
		"rule":  "can_move",
		"actor": "knight",
		"cell":  []any{3, 2},
		"pass":  true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"actor":"knight","cell":[3,2],"pass":true,"rule":"can_move"}`, string(data))
}

func TestMarshal_NestedStructures(t *testing.T) {
	data, err := Marshal(map[string]any{
		"all": []map[string]any{
			{"leaf": "movable"},
			{"not": map[string]any{"leaf": "alive"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"all":[{"leaf":"movable"},{"not":{"leaf":"alive"}}]}`, string(data))
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	data, err := Marshal("hp < 10 && team > 0")
	require.NoError(t, err)
	assert.Equal(t, `"hp < 10 && team > 0"`, string(data))
}

func TestMarshal_LineSeparatorsNotEscaped(t *testing.T) {
	data, err := Marshal("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(data))

	// A literal backslash followed by "u2028" stays escaped.
	data, err = Marshal(`a\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028"`, string(data))
}

func TestMarshal_NFCNormalization(t *testing.T) {
	decomposed := "e\u0301"
	data, err := Marshal(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(data))
}

func TestMarshal_IntegralFloats(t *testing.T) {
	data, err := Marshal(map[string]any{"max": float64(4)})
	require.NoError(t, err)
	assert.Equal(t, `{"max":4}`, string(data))

	_, err = Marshal(1.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestMarshal_RejectsNullAndUnknown(t *testing.T) {
	_, err := Marshal(nil)
	require.Error(t, err)

	_, err = Marshal(map[string]any{"x": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"x"`)

	_, err = Marshal(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+FB01 sorts before U+1F600 in UTF-8 but after it in UTF-16
	// (the emoji encodes as the surrogate 0xD83D).
	keys := SortedKeys(map[string]any{
		"\uFB01":     1,
		"\U0001F600": 2,
		"a":          3,
	})
	assert.Equal(t, []string{"a", "\U0001F600", "\uFB01"}, keys)
}

func TestHash_DomainSeparation(t *testing.T) {
	v := map[string]any{"leaf": "alive"}

	h1, err := Hash(DomainRule, v)
	require.NoError(t, err)
	h2, err := Hash(DomainTrace, v)
	require.NoError(t, err)

	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, h2)

	again, err := Hash(DomainRule, map[string]any{"leaf": "alive"})
	require.NoError(t, err)
	assert.Equal(t, h1, again, "hash must be stable")
}
