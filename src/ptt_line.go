package freedvtnc

/*------------------------------------------------------------------
 *
 * Purpose:   	Drive the output line that keys the transmitter.
 *
 * Description:	Traditionally this is done with the RTS signal of a serial
 *		port, DTR being used instead on some interfaces.
 *
 *		On Linux a GPIO pin can be used instead, through the
 *		character device interface (gpiochipN) rather than the old
 *		/sys/class/gpio files.
 *
 *		With "none", keying is left to the radio's VOX or to an
 *		interface that keys on audio.
 *
 *		Any of them can be inverted for interfaces where the line
 *		is active low.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"strings"

	"github.com/pkg/term"
	"github.com/warthog618/go-gpiocdev"
)

// PTTLine is the physical (or virtual) push to talk control.
type PTTLine interface {
	SetPTT(on bool) error
	Close() error
}

// PTTConfig selects and configures a PTT line.
type PTTConfig struct {
	Method string `yaml:"method"`           // none, serial or gpio
	Device string `yaml:"device,omitempty"` // serial port, e.g. /dev/ttyUSB0
	Signal string `yaml:"signal,omitempty"` // RTS or DTR
	Chip   string `yaml:"chip,omitempty"`   // gpio chip, e.g. gpiochip0
	Line   int    `yaml:"line,omitempty"`   // gpio line offset on the chip
	Invert bool   `yaml:"invert,omitempty"`
}

const (
	PTTMethodNone   = "none"
	PTTMethodSerial = "serial"
	PTTMethodGPIO   = "gpio"
)

// NewPTTLine opens the line described by cfg, released.
func NewPTTLine(cfg PTTConfig) (PTTLine, error) { //nolint:ireturn
	switch strings.ToLower(cfg.Method) {
	case "", PTTMethodNone:
		return NullPTTLine{}, nil
	case PTTMethodSerial:
		return OpenSerialPTTLine(cfg.Device, cfg.Signal, cfg.Invert)
	case PTTMethodGPIO:
		return OpenGPIOPTTLine(cfg.Chip, cfg.Line, cfg.Invert)
	default:
		return nil, fmt.Errorf("unknown PTT method %q, expected none, serial or gpio", cfg.Method)
	}
}

// NullPTTLine does nothing.
type NullPTTLine struct{}

func (NullPTTLine) SetPTT(bool) error { return nil }
func (NullPTTLine) Close() error      { return nil }

// modemControlPort is the part of *term.Term we need, so tests can stand in for a real port.
type modemControlPort interface {
	SetRTS(v bool) error
	SetDTR(v bool) error
	Close() error
}

type SerialPTTLine struct {
	port   modemControlPort
	useDTR bool
	invert bool
}

func OpenSerialPTTLine(device string, signal string, invert bool) (*SerialPTTLine, error) {
	var useDTR bool

	switch strings.ToUpper(signal) {
	case "", "RTS":
	case "DTR":
		useDTR = true
	default:
		return nil, fmt.Errorf("serial PTT signal must be RTS or DTR, not %q", signal)
	}

	if device == "" {
		return nil, fmt.Errorf("serial PTT needs a device name")
	}

	var t, err = term.Open(device)
	if err != nil {
		return nil, fmt.Errorf("open PTT serial port %s: %w", device, err)
	}

	var line = newSerialPTTLine(t, useDTR, invert)

	if err := line.SetPTT(false); err != nil {
		t.Close()

		return nil, err
	}

	return line, nil
}

func newSerialPTTLine(port modemControlPort, useDTR bool, invert bool) *SerialPTTLine {
	return &SerialPTTLine{port: port, useDTR: useDTR, invert: invert}
}

func (l *SerialPTTLine) SetPTT(on bool) error {
	var level = on != l.invert

	if l.useDTR {
		return l.port.SetDTR(level)
	}

	return l.port.SetRTS(level)
}

func (l *SerialPTTLine) Close() error {
	return l.port.Close()
}

// gpioOutputLine is the part of *gpiocdev.Line we need.
type gpioOutputLine interface {
	SetValue(v int) error
	Close() error
}

type GPIOPTTLine struct {
	line   gpioOutputLine
	invert bool
}

func OpenGPIOPTTLine(chip string, offset int, invert bool) (*GPIOPTTLine, error) {
	if chip == "" {
		chip = "gpiochip0"
	}

	var l, err = gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(IfThenElse(invert, 1, 0)),
		gpiocdev.WithConsumer("freedvtnc"))
	if err != nil {
		return nil, fmt.Errorf("request GPIO %s line %d: %w", chip, offset, err)
	}

	return newGPIOPTTLine(l, invert), nil
}

func newGPIOPTTLine(line gpioOutputLine, invert bool) *GPIOPTTLine {
	return &GPIOPTTLine{line: line, invert: invert}
}

func (l *GPIOPTTLine) SetPTT(on bool) error {
	return l.line.SetValue(IfThenElse(on != l.invert, 1, 0))
}

func (l *GPIOPTTLine) Close() error {
	return l.line.Close()
}
