package freedvtnc

import (
	"errors"
	"strings"
)

// Mode is a FreeDV data waveform the modem can transmit with.
type Mode int

const (
	ModeDATAC1 Mode = iota
	ModeDATAC3
	ModeDATAC4
)

// ErrInvalidMode is returned when a mode name is not one of the known FreeDV data modes.
var ErrInvalidMode = errors.New("invalid mode")

// Order matters: it is the order the modes are listed in error messages.
var allModes = []Mode{ModeDATAC1, ModeDATAC3, ModeDATAC4}

func (m Mode) String() string {
	switch m {
	case ModeDATAC1:
		return "DATAC1"
	case ModeDATAC3:
		return "DATAC3"
	case ModeDATAC4:
		return "DATAC4"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m >= ModeDATAC1 && m <= ModeDATAC4
}

// ParseMode converts a mode name, in any letter case, to a Mode.
func ParseMode(s string) (Mode, error) {
	var name = strings.ToUpper(strings.TrimSpace(s))

	for _, m := range allModes {
		if m.String() == name {
			return m, nil
		}
	}

	return ModeDATAC1, ErrInvalidMode
}

// ModeNames returns the valid mode names, comma separated.
func ModeNames() string {
	var names = make([]string, 0, len(allModes))
	for _, m := range allModes {
		names = append(names, m.String())
	}

	return strings.Join(names, ", ")
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, ErrInvalidMode
	}

	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	var parsed, err = ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// ChannelState is the channel activity detector's view of the radio channel.
type ChannelState int

const (
	ChannelClear ChannelState = iota
	ChannelBusy
)

func (c ChannelState) String() string {
	if c == ChannelBusy {
		return "BUSY"
	}

	return "CLEAR"
}
