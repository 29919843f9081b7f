package freedvtnc

// The interfaces in this file are what the command channel needs from the
// rest of the TNC.  The FreeDV codec, the audio devices and the
// configuration file all live behind them.

// ModeSwitcher changes the waveform the modulator transmits with.
type ModeSwitcher interface {
	SetMode(m Mode) error
}

// TXGain sets the transmit audio level, in dB relative to full scale.
type TXGain interface {
	SetGainDB(db int) error
}

// TXQueue holds audio waiting to be transmitted.
type TXQueue interface {
	Clear() error
}

// ConfigSaver persists the current settings and reports where it put them.
type ConfigSaver interface {
	Save(s Settings) (string, error)
}

// Collaborators bundles everything the executor calls out to.
// A nil member means the corresponding command has nothing to drive and
// simply updates ModemState.
type Collaborators struct {
	Modem ModeSwitcher
	Gain  TXGain
	Queue TXQueue
	Saver ConfigSaver
}
