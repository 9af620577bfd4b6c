package interval

import (
	"testing"
	"time"

	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/interval/pkg/duration"
)

func TestEncodeNumbersAsSeconds(t *testing.T) {
	codec := newTestCodec(-1)
	cases := []struct {
		in   any
		want string
	}{
		{36000, "PT36000S"},
		{int64(-5), "-PT5S"},
		{uint64(7), "PT7S"},
		{1.5, "PT1.5S"},
		{decimal.MustParse("0.250"), "PT0.25S"},
		{90 * time.Second, "PT90S"},
		{0, "P"},
	}
	for _, tc := range cases {
		out, err := codec.Encode(tc.in)
		require.NoError(t, err, "%v", tc.in)
		assert.Equal(t, tc.want, out, "%v", tc.in)
	}
}

func TestEncodeEmptyDuration(t *testing.T) {
	out, err := newTestCodec(-1).Encode(duration.Duration{})
	require.NoError(t, err)
	assert.Equal(t, "P", out)
}

func TestEncodePrecision(t *testing.T) {
	codec := newTestCodec(3)
	d, err := codec.Decode("P1Y2M3DT4H5M6.234567S")
	require.NoError(t, err)

	out, err := codec.Encode(d)
	require.NoError(t, err)
	assert.Equal(t, "P1Y2M3DT4H5M6.235S", out)

	out, err = codec.Encode(&d)
	require.NoError(t, err)
	assert.Equal(t, "P1Y2M3DT4H5M6.235S", out)
}

func TestEncodeRejectsOtherTypes(t *testing.T) {
	codec := newTestCodec(-1)
	_, err := codec.Encode("P1D")
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	var nilDuration *duration.Duration
	_, err = codec.Encode(nilDuration)
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestNumericRoundTrip(t *testing.T) {
	codec := newTestCodec(-1)
	out, err := codec.Encode(36000)
	require.NoError(t, err)

	d, err := codec.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Hour, d.Elapsed())
	assert.True(t, d.EqualSeconds(decimal.MustNew(36000, 0)))
}

func TestFixedUnitRoundTrip(t *testing.T) {
	codec := newTestCodec(-1)
	for _, in := range []string{"04:05:06.5", "-10:00:00", "@ 3 hours 5 mins ago", "PT1H-30M"} {
		d, err := codec.Decode(in)
		require.NoError(t, err)

		out, err := codec.Encode(d)
		require.NoError(t, err)

		back, err := codec.Decode(out)
		require.NoError(t, err)
		assert.True(t, back.Equal(d), "%s -> %s", in, out)
	}
}

func TestScanner(t *testing.T) {
	codec := newTestCodec(-1)

	var d duration.Duration
	require.NoError(t, codec.Scanner(&d).Scan("1 year 2 mons"))
	assert.Equal(t, "P1Y2M", d.ISO8601())

	require.NoError(t, codec.Scanner(&d).Scan([]byte("P3D")))
	assert.Equal(t, "P3D", d.ISO8601())

	require.NoError(t, codec.Scanner(&d).Scan(nil))
	assert.Equal(t, "P", d.ISO8601())

	assert.Error(t, codec.Scanner(&d).Scan(42))
	assert.Error(t, codec.Scanner(&d).Scan("1 fortnight"))
}

func TestValuer(t *testing.T) {
	codec := newTestCodec(0)

	v, err := codec.Valuer(duration.Hours(2)).Value()
	require.NoError(t, err)
	assert.Equal(t, "PT2H", v)

	v, err = codec.Valuer(decimal.MustParse("1.6")).Value()
	require.NoError(t, err)
	assert.Equal(t, "PT2S", v)

	v, err = codec.Valuer(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = codec.Valuer(struct{}{}).Value()
	assert.Error(t, err)
}
