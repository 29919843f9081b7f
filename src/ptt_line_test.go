package freedvtnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGPIOLine is a test double for gpioOutputLine that records calls
// without requiring GPIO hardware or the gpio-sim kernel module.
type mockGPIOLine struct {
	value  int
	closed bool
}

func (m *mockGPIOLine) SetValue(v int) error {
	m.value = v

	return nil
}

func (m *mockGPIOLine) Close() error {
	m.closed = true

	return nil
}

type mockSerialPort struct {
	rts, dtr bool
	closed   bool
}

func (m *mockSerialPort) SetRTS(v bool) error {
	m.rts = v

	return nil
}

func (m *mockSerialPort) SetDTR(v bool) error {
	m.dtr = v

	return nil
}

func (m *mockSerialPort) Close() error {
	m.closed = true

	return nil
}

func TestGPIOPTTLine(t *testing.T) {
	for _, tc := range []struct {
		invert bool
		on     bool
		want   int
	}{
		{false, true, 1},
		{false, false, 0},
		{true, true, 0},
		{true, false, 1},
	} {
		var mock = new(mockGPIOLine)
		mock.value = -1

		require.NoError(t, newGPIOPTTLine(mock, tc.invert).SetPTT(tc.on))
		assert.Equal(t, tc.want, mock.value, "invert=%v on=%v", tc.invert, tc.on)
	}
}

func TestGPIOPTTLine_Close(t *testing.T) {
	var mock = new(mockGPIOLine)

	require.NoError(t, newGPIOPTTLine(mock, false).Close())
	assert.True(t, mock.closed)
}

func TestSerialPTTLine_RTS(t *testing.T) {
	var port = new(mockSerialPort)
	var line = newSerialPTTLine(port, false, false)

	require.NoError(t, line.SetPTT(true))
	assert.True(t, port.rts)
	assert.False(t, port.dtr, "DTR must be left alone")

	require.NoError(t, line.SetPTT(false))
	assert.False(t, port.rts)
}

func TestSerialPTTLine_DTRInverted(t *testing.T) {
	var port = new(mockSerialPort)
	var line = newSerialPTTLine(port, true, true)

	require.NoError(t, line.SetPTT(true))
	assert.False(t, port.dtr)

	require.NoError(t, line.SetPTT(false))
	assert.True(t, port.dtr)
	assert.False(t, port.rts, "RTS must be left alone")

	require.NoError(t, line.Close())
	assert.True(t, port.closed)
}

func TestNewPTTLine_None(t *testing.T) {
	for _, method := range []string{"", "none", "NONE"} {
		var line, err = NewPTTLine(PTTConfig{Method: method}) //nolint:exhaustruct

		require.NoError(t, err)
		assert.IsType(t, NullPTTLine{}, line)
	}
}

func TestNewPTTLine_Errors(t *testing.T) {
	var _, err = NewPTTLine(PTTConfig{Method: "vox"}) //nolint:exhaustruct
	assert.ErrorContains(t, err, "unknown PTT method")

	_, err = NewPTTLine(PTTConfig{Method: "serial", Signal: "CTS"}) //nolint:exhaustruct
	assert.ErrorContains(t, err, "RTS or DTR")

	_, err = NewPTTLine(PTTConfig{Method: "serial"}) //nolint:exhaustruct
	assert.ErrorContains(t, err, "device name")
}
