package date

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestParseAcceptsISOAndDMY(t *testing.T) {
	d, err := Parse("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, New(2024, time.March, 1), d)

	d, err = Parse("2024-03-01T08:30:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", d.String())

	d, err = Parse("15/08/2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-08-15", d.String())

	_, err = Parse("ayer")
	assert.Error(t, err)
}

func TestFormats(t *testing.T) {
	d := New(2024, time.March, 5)
	assert.Equal(t, "05/03/2024", d.DMY())
	assert.Equal(t, "05.03.2024", d.Dotted())
}

func TestAddMonthsClampsDay(t *testing.T) {
	d := New(2024, time.January, 31)
	assert.Equal(t, "2024-02-29", d.AddMonths(1).String())
	assert.Equal(t, "2023-12-31", d.AddMonths(-1).String())
	assert.Equal(t, "2025-01-31", d.AddMonths(12).String())
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2023, time.February))
	assert.Equal(t, 31, DaysIn(2023, time.December))
}

func TestMarshal(t *testing.T) {
	d := New(2024, time.March, 1)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Same(d))

	y, err := yaml.Marshal(map[string]Date{"fecha": d})
	require.NoError(t, err)
	assert.Contains(t, string(y), "2024-03-01")
}
