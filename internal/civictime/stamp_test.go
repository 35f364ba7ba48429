package civictime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func TestInWindowAcceptedEncodings(t *testing.T) {
	today := Day{Year: 2026, Month: time.February, Day: 12}

	tests := []struct {
		name string
		in   Stamp
		want bool
	}{
		{"iso with offset", Raw("2026-02-12T09:15:00+05:30"), true},
		{"iso utc late previous evening", Raw("2026-02-11T20:00:00Z"), true},
		{"iso utc before civic midnight", Raw("2026-02-11T18:00:00Z"), false},
		{"iso fractional utc", Raw("2026-02-12T10:00:00.123456Z"), true},
		{"naive iso", Raw("2026-02-12T23:59:59"), true},
		{"space separated fractional", Raw("2026-02-12 08:30:00.654321"), true},
		{"space separated", Raw("2026-02-12 08:30:00"), true},
		{"display", Raw("12 Feb 2026, 05:53 PM"), true},
		{"display date only", Raw("12 Feb 2026"), true},
		{"date only", Raw("2026-02-12"), true},
		{"yesterday", Raw("2026-02-11T10:00:00"), false},
		{"typed", At(time.Date(2026, 2, 12, 4, 0, 0, 0, time.UTC)), true},
		{"garbage", Raw("yesterday-ish"), false},
		{"missing", Stamp{}, false},
		{"blank", Raw("   "), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InWindow(tt.in, today, ist))
		})
	}
}

func TestParseInstantMalformed(t *testing.T) {
	_, err := ParseInstant("31/12/2026", ist)
	require.ErrorIs(t, err, ErrMalformedTimestamp)

	_, err = ParseInstant("", ist)
	require.ErrorIs(t, err, ErrMalformedTimestamp)
}

func TestParseInstantNaiveUsesCivicZone(t *testing.T) {
	got, err := ParseInstant("2026-02-12 00:30:00", ist)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 11, 19, 0, 0, 0, time.UTC), got.UTC())
}

func TestStampDate(t *testing.T) {
	d, err := Raw("2026-03-14T00:00:00").Date(ist)
	require.NoError(t, err)
	assert.Equal(t, Day{2026, time.March, 14}, d)

	// date columns scan as UTC midnight and must keep their calendar day
	d, err = At(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)).Date(time.FixedZone("west", -8*3600))
	require.NoError(t, err)
	assert.Equal(t, Day{2026, time.March, 14}, d)

	d, err = Raw("14 Mar 2026").Date(ist)
	require.NoError(t, err)
	assert.Equal(t, Day{2026, time.March, 14}, d)

	_, err = Raw("soon").Date(ist)
	assert.ErrorIs(t, err, ErrMalformedTimestamp)
}

func TestStampScanAndValue(t *testing.T) {
	var s Stamp
	require.NoError(t, s.Scan("2026-02-12 08:30:00"))
	assert.Equal(t, "2026-02-12 08:30:00", s.String())

	v, err := s.Value()
	require.NoError(t, err)
	assert.IsType(t, time.Time{}, v)

	require.NoError(t, s.Scan(nil))
	assert.True(t, s.IsZero())
	v, err = s.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Error(t, s.Scan(42))
}

func TestStampJSON(t *testing.T) {
	var payload struct {
		At Stamp `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"12 Feb 2026, 05:53 PM"}`), &payload))
	assert.True(t, InWindow(payload.At, Day{2026, time.February, 12}, ist))

	require.NoError(t, json.Unmarshal([]byte(`{"at":null}`), &payload))
	assert.True(t, payload.At.IsZero())

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":null}`, string(b))
}

func TestCountInWindow(t *testing.T) {
	stamps := []Stamp{Raw("2026-02-12T01:00:00"), Raw("2026-02-10T01:00:00"), Raw("bad"), Raw("2026-02-12")}
	n := CountInWindow(stamps, func(s Stamp) Stamp { return s }, Day{2026, time.February, 12}, ist)
	assert.Equal(t, 2, n)
}
