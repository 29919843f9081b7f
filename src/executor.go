package freedvtnc

/*------------------------------------------------------------------
 *
 * Purpose:	Carry out one parsed command against the modem state.
 *
 * Description:	Commands from every client connection funnel through
 *		Execute, which holds the executor lock for the whole
 *		command.  At most one command is therefore changing the
 *		modem at any time.
 *
 *		Where a command drives something outside (mode switch,
 *		transmit gain, queue flush, config file) the state is only
 *		updated after that call succeeds.  A failure leaves the
 *		state exactly as it was.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// PTTTester starts the timed PTT self test.
type PTTTester interface {
	StartTest() error
}

// Executor applies commands to a ModemState.
type Executor struct {
	mu     sync.Mutex
	state  *ModemState
	ptt    PTTTester
	collab Collaborators
	logger *log.Logger
}

func NewExecutor(state *ModemState, ptt PTTTester, collab Collaborators, logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.Default()
	}

	return &Executor{ //nolint:exhaustruct
		state:  state,
		ptt:    ptt,
		collab: collab,
		logger: logger.WithPrefix("executor"),
	}
}

// Execute runs one command and returns its reply.  It never panics on
// client input and never returns without a reply.
func (e *Executor) Execute(cmd Command) Response {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.logger.Debug("execute", "command", cmd.Kind, "arg", cmd.Arg)

	switch cmd.Kind {
	case CommandMode:
		return e.mode(cmd)
	case CommandVolume:
		return e.volume(cmd)
	case CommandFollow:
		return e.follow(cmd)
	case CommandStatus:
		return e.status()
	case CommandLevels:
		return okResponse("LEVELS", fmt.Sprintf("RX=%.1f", e.state.RxLevel()))
	case CommandPTTTest:
		return e.pttTest()
	case CommandClear:
		return e.clear()
	case CommandSave:
		return e.save()
	case CommandPing:
		return okResponse("PONG", "")
	case CommandEmpty:
		return errorResponse("Empty command")
	default:
		return errorResponse(IfThenElse(cmd.Reason != "", cmd.Reason, reasonUnknownCommand))
	}
}

func (e *Executor) mode(cmd Command) Response {
	if cmd.IsQuery() {
		return okResponse("MODE", e.state.Mode().String())
	}

	var m, err = ParseMode(cmd.Arg)
	if err != nil {
		return errorResponse("Invalid mode. Valid: " + ModeNames())
	}

	if err := e.switchMode(m); err != nil {
		e.logger.Error("mode change failed", "mode", m, "err", err)

		return errorResponse("Mode change failed: " + err.Error())
	}

	e.logger.Info("mode changed", "mode", m)

	return okResponse("MODE", m.String())
}

// switchMode must be called with e.mu held.
func (e *Executor) switchMode(m Mode) error {
	if e.collab.Modem != nil {
		if err := e.collab.Modem.SetMode(m); err != nil {
			return err
		}
	}

	e.state.SetMode(m)

	return nil
}

func (e *Executor) volume(cmd Command) Response {
	if cmd.IsQuery() {
		return okResponse("VOLUME", strconv.Itoa(e.state.VolumeDB()))
	}

	var db, err = strconv.Atoi(cmd.Arg)
	if err != nil {
		return errorResponse("Invalid volume")
	}

	if e.collab.Gain != nil {
		if err := e.collab.Gain.SetGainDB(db); err != nil {
			e.logger.Error("volume change failed", "db", db, "err", err)

			return errorResponse("Volume change failed: " + err.Error())
		}
	}

	e.state.SetVolumeDB(db)
	e.logger.Info("volume changed", "db", db)

	return okResponse("VOLUME", strconv.Itoa(db))
}

func (e *Executor) follow(cmd Command) Response {
	if cmd.IsQuery() {
		return okResponse("FOLLOW", onOff(e.state.Follow()))
	}

	var on bool

	switch strings.ToUpper(cmd.Arg) {
	case "ON":
		on = true
	case "OFF":
		on = false
	default:
		return errorResponse("Invalid follow state. Use: ON or OFF")
	}

	e.state.SetFollow(on)
	e.logger.Info("follow changed", "follow", onOff(on))

	return okResponse("FOLLOW", onOff(on))
}

// FormatStatus renders the STATUS data fields.  Field order is fixed; clients parse it.
func FormatStatus(s Snapshot) string {
	return fmt.Sprintf("MODE=%s VOLUME=%d FOLLOW=%s PTT=%s CHANNEL=%s",
		s.Mode, s.VolumeDB, onOff(s.Follow), onOff(s.PTT), s.Channel)
}

func (e *Executor) status() Response {
	return okResponse("STATUS", FormatStatus(e.state.Snapshot()))
}

func (e *Executor) pttTest() Response {
	if e.ptt == nil {
		return errorResponse("PTT test failed: no PTT controller")
	}

	var err = e.ptt.StartTest()

	switch {
	case errors.Is(err, ErrPTTBusy):
		return errorResponse("PTT test already in progress")
	case err != nil:
		e.logger.Error("PTT test failed", "err", err)

		return errorResponse("PTT test failed: " + err.Error())
	}

	e.logger.Info("PTT test triggered")

	return okResponse("PTT", "TEST started")
}

func (e *Executor) clear() Response {
	if e.collab.Queue != nil {
		if err := e.collab.Queue.Clear(); err != nil {
			e.logger.Error("clear failed", "err", err)

			return errorResponse("Clear failed: " + err.Error())
		}
	}

	e.logger.Info("TX buffer cleared")

	return okResponse("CLEAR", "")
}

func (e *Executor) save() Response {
	if e.collab.Saver == nil {
		return errorResponse("Save failed: no configuration file")
	}

	var path, err = e.collab.Saver.Save(e.state.Settings())
	if err != nil {
		e.logger.Error("save failed", "err", err)

		return errorResponse("Save failed: " + err.Error())
	}

	e.logger.Info("config saved", "path", path)

	return okResponse("SAVE", path)
}

// FollowRxMode is called by the demodulator with the mode of each frame it
// decodes.  With follow on, the transmit mode is switched to match.
// An explicit MODE command is still accepted while follow is on; the next
// received frame can switch away from it again.
func (e *Executor) FollowRxMode(m Mode) error {
	if !m.Valid() {
		return ErrInvalidMode
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Follow() || e.state.Mode() == m {
		return nil
	}

	if err := e.switchMode(m); err != nil {
		return fmt.Errorf("follow %s: %w", m, err)
	}

	e.logger.Info("mode followed received signal", "mode", m)

	return nil
}
