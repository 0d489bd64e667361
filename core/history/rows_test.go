package history

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp_Layouts(t *testing.T) {
	want := time.Date(2024, 5, 6, 14, 30, 0, 0, time.UTC)
	for _, s := range []string{
		"2024-05-06T14:30:00Z",
		"2024-05-06 14:30:00",
		"2024-05-06T14:30:00",
		"2024-05-06 14:30",
		"05/06/2024 14:30",
		"06.05.2024 14:30",
		" 2024-05-06 14:30:00 ",
		"1715005800",
	} {
		ts, err := ParseTimestamp(s, time.UTC)
		if err != nil {
			t.Errorf("%q: %v", s, err)
			continue
		}
		if !ts.Equal(want) {
			t.Errorf("%q: got %v", s, ts)
		}
	}
}

func TestParseTimestamp_LocationAndOffset(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	ts, err := ParseTimestamp("2024-01-01 08:00:00", paris)
	require.NoError(t, err)
	assert.Equal(t, 8, ts.Hour())
	assert.Equal(t, paris, ts.Location())

	ts, err = ParseTimestamp("2024-01-01T08:00:00+05:00", paris)
	require.NoError(t, err)
	assert.Equal(t, 8, ts.Hour())
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, s := range []string{"", "yesterday", "2024-13-45"} {
		if _, err := ParseTimestamp(s, nil); err == nil {
			t.Errorf("%q: expected error", s)
		}
	}
}

func TestParseEnergy(t *testing.T) {
	v, err := ParseEnergy(" 2.75 ")
	require.NoError(t, err)
	assert.Equal(t, 2.75, v)
	for _, s := range []string{"", "abc", "NaN", "Inf", "-1"} {
		if _, err := ParseEnergy(s); err == nil {
			t.Errorf("%q: expected error", s)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)
	p, err = ParsePolicy("SKIP")
	require.NoError(t, err)
	assert.Equal(t, PolicySkip, p)
	_, err = ParsePolicy("ignore")
	assert.Error(t, err)
}

func TestRowBuilder_Reject(t *testing.T) {
	b := RowBuilder{Policy: PolicyReject}
	require.NoError(t, b.Add(2, "2024-01-01 00:00:00", "1.5"))
	err := b.Add(3, "not-a-date", "1.0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRow))
	var mre *MalformedRowError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, 3, mre.Line)
	assert.Equal(t, ColumnTimestamp, mre.Column)

	err = b.Add(4, "2024-01-01 01:00:00", "x")
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, ColumnEnergy, mre.Column)
	assert.Len(t, b.Records(), 1)
}

func TestRowBuilder_Skip(t *testing.T) {
	b := RowBuilder{Policy: PolicySkip}
	require.NoError(t, b.Add(2, "2024-01-01 00:00:00", "1.5"))
	require.NoError(t, b.Add(3, "bad", "1.0"))
	require.NoError(t, b.Add(4, "2024-01-01 02:00:00", "-3"))
	require.NoError(t, b.Add(5, "2024-01-01 03:00:00", "2.5"))
	assert.Len(t, b.Records(), 2)
	assert.Equal(t, 2, b.Skipped())
}
