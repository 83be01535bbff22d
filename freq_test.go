package bytehuff

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestCountFrequencies(t *testing.T) {
	ft := CountFrequencies([]byte("aaabbc\n"))

	expectDump := strings.Join([]string{
		"FrequencyTable{\n",
		"\tLen() = 4\n",
		"\tTotal() = 7\n",
		"\tCount((0x0A)) = 1\n",
		"\tCount(a) = 3\n",
		"\tCount(b) = 2\n",
		"\tCount(c) = 1\n",
		"}\n",
	}, "")

	var buf strings.Builder
	_, _ = ft.Dump(&buf)
	actualDump := buf.String()

	if expectDump != actualDump {
		t.Errorf("wrong output:\n\texpect: %s\n\tactual: %s", expectDump, actualDump)
	}

	count, found := ft.Count('b')
	require.True(t, found)
	require.Equal(t, uint64(2), count)

	count, found = ft.Count('z')
	require.False(t, found)
	require.Equal(t, uint64(0), count)
}

func TestCountFrequencies_Empty(t *testing.T) {
	ft := CountFrequencies(nil)
	require.Equal(t, 0, ft.Len())
	require.Equal(t, uint64(0), ft.Total())
	require.Empty(t, ft.Entries())
}

func TestCountReader(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox\x00\xff"), 5000)
	ft, err := CountReader(iotest.HalfReader(bytes.NewReader(data)))
	require.NoError(t, err)
	require.Equal(t, CountFrequencies(data).Entries(), ft.Entries())
	require.Equal(t, uint64(len(data)), ft.Total())

	_, err = CountReader(iotest.ErrReader(iotest.ErrTimeout))
	require.ErrorIs(t, err, iotest.ErrTimeout)
}

func TestNewFrequencyTable(t *testing.T) {
	ft := NewFrequencyTable(map[byte]uint64{'x': 4, 'y': 0, 0x00: 1})
	require.Equal(t, 2, ft.Len())
	require.Equal(t, uint64(5), ft.Total())
	require.Equal(t, []FrequencyEntry{{Symbol: 0x00, Count: 1}, {Symbol: 'x', Count: 4}}, ft.Entries())
}

func TestFrequencyTable_JSON(t *testing.T) {
	ft := CountFrequencies([]byte("ABAB"))
	raw, err := json.Marshal(ft)
	require.NoError(t, err)
	require.Equal(t, `[{"symbol":65,"count":2},{"symbol":66,"count":2}]`, string(raw))

	var back FrequencyTable
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, ft.Entries(), back.Entries())
	require.Equal(t, ft.Total(), back.Total())

	err = json.Unmarshal([]byte(`[{"symbol":1,"count":1},{"symbol":1,"count":2}]`), &back)
	require.Error(t, err)
}

func TestSymbolLabel(t *testing.T) {
	require.Equal(t, "a", SymbolLabel('a'))
	require.Equal(t, " ", SymbolLabel(' '))
	require.Equal(t, "(0x0A)", SymbolLabel('\n'))
	require.Equal(t, "(0xFF)", SymbolLabel(0xff))
}
