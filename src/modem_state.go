package freedvtnc

/*------------------------------------------------------------------
 *
 * Purpose:	Hold the live modem configuration and telemetry.
 *
 * Description:	There is exactly one of these per process.  It is created
 *		at startup and handed to everything that needs it, the
 *		command executor, the PTT controller and the receive level
 *		meter.
 *
 *		Every field sits behind the same mutex so that a STATUS
 *		snapshot never mixes values from two different updates.
 *
 *------------------------------------------------------------------*/

import (
	"sync"
)

// Snapshot is a copy of every ModemState field taken at one instant.
type Snapshot struct {
	Mode      Mode
	VolumeDB  int
	Follow    bool
	PTT       bool
	Channel   ChannelState
	RxLevelDB float64
}

// ModemState is the single shared, mutable view of the modem.
type ModemState struct {
	mu sync.Mutex

	mode      Mode
	volumeDB  int
	follow    bool
	ptt       bool
	channel   ChannelState
	rxLevelDB float64
}

// NewModemState creates the state with the configured startup values.
// PTT starts released and the channel starts clear.
func NewModemState(mode Mode, volumeDB int, follow bool) *ModemState {
	if !mode.Valid() {
		mode = ModeDATAC1
	}

	return &ModemState{ //nolint:exhaustruct
		mode:      mode,
		volumeDB:  volumeDB,
		follow:    follow,
		rxLevelDB: silenceDB,
	}
}

func (s *ModemState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Mode:      s.mode,
		VolumeDB:  s.volumeDB,
		Follow:    s.follow,
		PTT:       s.ptt,
		Channel:   s.channel,
		RxLevelDB: s.rxLevelDB,
	}
}

func (s *ModemState) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mode
}

func (s *ModemState) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = m
}

func (s *ModemState) VolumeDB() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.volumeDB
}

func (s *ModemState) SetVolumeDB(db int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.volumeDB = db
}

func (s *ModemState) Follow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.follow
}

func (s *ModemState) SetFollow(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.follow = on
}

func (s *ModemState) PTT() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ptt
}

// SetPTT is for the PTT controller only; commands never set it directly.
func (s *ModemState) SetPTT(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ptt = on
}

// SetChannelBusy is fed by the channel activity detector.
func (s *ModemState) SetChannelBusy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.channel = IfThenElse(busy, ChannelBusy, ChannelClear)
}

// SetRxLevel is fed by the receive audio level meter.
func (s *ModemState) SetRxLevel(db float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rxLevelDB = db
}

// SetTelemetry updates level and channel together.
func (s *ModemState) SetTelemetry(rxLevelDB float64, busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rxLevelDB = rxLevelDB
	s.channel = IfThenElse(busy, ChannelBusy, ChannelClear)
}

func (s *ModemState) RxLevel() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rxLevelDB
}

// Settings returns the persistable part of the state.
func (s *ModemState) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Settings{Mode: s.mode, VolumeDB: s.volumeDB, Follow: s.follow}
}

// Settings is what SAVE writes to the configuration file.
type Settings struct {
	Mode     Mode
	VolumeDB int
	Follow   bool
}
