package nmea

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rmcTaipei  = "$GPRMC,083100.00,A,2501.8000,N,12133.6000,E,0.0,0.0,010524,,,A*5C"
	rmcVoid    = "$GPRMC,083200.00,V,,,,,,,010524,,,N*76"
	rmcParis   = "$GPRMC,083100.00,A,4851.0000,N,00221.0000,E,0.0,0.0,010524,,,A*5F"
	ggaTaipei  = "$GPGGA,083100.00,2501.8000,N,12133.6000,E,1,08,1.2,10.0,M,0.0,M,,*66"
	ggaNoFix   = "$GPGGA,083100.00,,,,,0,00,99.9,,,,,,*55"
	gsaThreeD  = "$GPGSA,A,3,04,05,09,12,,,,,,,,,2.5,0.8,2.4*30"
	badChecked = "$GPRMC,083100.00,A,2501.8000,N,12133.6000,E,0.0,0.0,010524,,,A*00"
)

func TestDecoder_RMC(t *testing.T) {
	d := NewDecoder(nil)

	fix, ok, err := d.Feed(rmcTaipei)
	require.NoError(t, err)
	require.True(t, ok)

	assert.InDelta(t, 25.03, fix.Latitude, 1e-9)
	assert.InDelta(t, 121.56, fix.Longitude, 1e-9)
	assert.Equal(t, UERE, fix.HorizontalAccuracy, "HDOP defaults to 1 before any GGA or GSA")
	assert.Equal(t, time.Date(2024, 5, 1, 8, 31, 0, 0, time.UTC), fix.Timestamp)
}

func TestDecoder_HDOPFromGGAAndGSA(t *testing.T) {
	d := NewDecoder(nil)

	_, ok, err := d.Feed(ggaTaipei)
	require.NoError(t, err)
	assert.False(t, ok, "GGA alone does not produce a fix")

	fix, ok, err := d.Feed(rmcTaipei)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 6.0, fix.HorizontalAccuracy, 1e-9)

	_, _, err = d.Feed(gsaThreeD)
	require.NoError(t, err)
	fix, _, err = d.Feed(rmcParis)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, fix.HorizontalAccuracy, 1e-9)
	assert.InDelta(t, 48.85, fix.Latitude, 1e-9)
	assert.InDelta(t, 2.35, fix.Longitude, 1e-9)
}

func TestDecoder_SkipsWithoutError(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "void RMC", line: rmcVoid},
		{name: "GGA without fix", line: ggaNoFix},
		{name: "unsupported sentence", line: "$GPGSV,3,1,11,03,03,111,00,04,15,270,00,06,01,010,00,13,06,292,00*74"},
		{name: "blank", line: "   "},
		{name: "garbage", line: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(nil)
			_, ok, err := d.Feed(tt.line)
			assert.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestDecoder_InvalidGGAKeepsHDOP(t *testing.T) {
	d := NewDecoder(nil)
	_, _, _ = d.Feed(ggaTaipei)
	_, _, _ = d.Feed(ggaNoFix)

	fix, ok, err := d.Feed(rmcTaipei)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 6.0, fix.HorizontalAccuracy, 1e-9)
}

func TestDecoder_ChecksumMismatch(t *testing.T) {
	d := NewDecoder(nil)
	_, ok, err := d.Feed(badChecked)
	assert.Error(t, err)
	assert.False(t, ok)
}
