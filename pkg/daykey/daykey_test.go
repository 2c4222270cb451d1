package daykey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTodayAcrossShiftedMidnight(t *testing.T) {
	// 18:29:59Z is 23:59:59 in the shifted frame, 18:30Z is the next midnight.
	before := time.Date(2026, 10, 14, 18, 29, 59, 0, time.UTC)
	after := time.Date(2026, 10, 14, 18, 30, 0, 0, time.UTC)

	require.Equal(t, Key("2026-10-14"), Today(before))
	require.Equal(t, Key("2026-10-15"), Today(after))
}

func TestSameDayGivesSameKeyAndWindow(t *testing.T) {
	first := time.Date(2026, 10, 14, 18, 30, 0, 0, time.UTC)
	wantStart, wantEnd := Window(first)

	for _, offset := range []time.Duration{0, time.Second, 6 * time.Hour, 23*time.Hour + 59*time.Minute + 59*time.Second} {
		instant := first.Add(offset)
		start, end := Window(instant)
		require.Equal(t, Key("2026-10-15"), Today(instant))
		require.Equal(t, wantStart, start)
		require.Equal(t, wantEnd, end)
	}
}

func TestWindowBounds(t *testing.T) {
	instants := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 29, 1, 30, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 23, 59, 59, 999, time.UTC),
		time.Date(2026, 10, 15, 12, 0, 0, 0, time.FixedZone("PDT", -7*3600)),
	}
	for _, instant := range instants {
		start, end := Window(instant)
		require.Equal(t, 24*time.Hour, end.Sub(start))
		require.False(t, instant.Before(start), instant)
		require.True(t, instant.Before(end), instant)
		require.Equal(t, time.UTC, start.Location())
		require.Equal(t, 0, start.In(zone).Hour())
		require.Equal(t, 0, start.In(zone).Minute())
	}
}

func TestWindowIgnoresInputLocation(t *testing.T) {
	utc := time.Date(2026, 10, 15, 2, 0, 0, 0, time.UTC)
	ny := utc.In(time.FixedZone("EDT", -4*3600))

	s1, e1 := Window(utc)
	s2, e2 := Window(ny)
	require.Equal(t, s1.String(), s2.String())
	require.Equal(t, e1.String(), e2.String())
	require.Equal(t, Today(utc), Today(ny))
	require.Equal(t, "2026-10-14T18:30:00Z", s1.Format(time.RFC3339))
}

func TestScan(t *testing.T) {
	var k Key
	require.NoError(t, k.Scan("2026-10-15"))
	require.Equal(t, Key("2026-10-15"), k)

	require.NoError(t, k.Scan([]byte("2026-10-16T00:00:00Z")))
	require.Equal(t, Key("2026-10-16"), k)

	require.NoError(t, k.Scan(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, Key("2026-10-17"), k)

	require.Error(t, k.Scan("bogus"))
	require.Error(t, k.Scan(42))

	v, err := Key("2026-10-15").Value()
	require.NoError(t, err)
	require.Equal(t, "2026-10-15", v)
}
