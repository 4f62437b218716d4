package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateScanNormalizesDateColumn(t *testing.T) {
	// DATE columns come back from the driver as midnight time.Time values.
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Date("2025-03-10"), d)

	require.NoError(t, d.Scan([]byte("2025-03-11")))
	assert.Equal(t, Date("2025-03-11"), d)

	require.NoError(t, d.Scan("2025-03-12"))
	assert.Equal(t, Date("2025-03-12"), d)

	require.NoError(t, d.Scan(nil))
	assert.Equal(t, Date(""), d)

	assert.Error(t, d.Scan(42))
}

func TestDateRoundTripsOnTheWire(t *testing.T) {
	apt := Appointment{Date: "2025-03-10"}
	require.NoError(t, apt.Date.Scan(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))

	body, err := json.Marshal(apt)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"date":"2025-03-10"`)

	v, err := apt.Date.Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", v)
}
