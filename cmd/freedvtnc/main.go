package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Main program for the FreeDV TNC command channel.
 *
 * Description:	Loads the configuration file, opens the sound card and
 *		PTT line, then serves the ASCII command port until
 *		interrupted.
 *
 *		The FreeDV modem itself and the KISS data port run
 *		elsewhere; this process owns the transmit audio path, the
 *		PTT line and the live settings.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/log"
	freedvtnc "github.com/doismellburning/freedvtnc/src"
	"github.com/spf13/pflag"
)

// modulator stands in for the FreeDV transmit modem's mode switch.
//
// With no demodulator in this process nothing reports received modes, so
// FOLLOW ON is stored and reported but never changes the mode by itself.
// The demodulator's frame decoded callback is where exec.FollowRxMode
// belongs once it runs here.
type modulator struct {
	logger *log.Logger
}

func (m modulator) SetMode(mode freedvtnc.Mode) error {
	m.logger.Info("modulator mode set", "mode", mode)

	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	var flags = pflag.NewFlagSet("freedvtnc", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	var configFileName = flags.StringP("config-file", "c", freedvtnc.DefaultConfigPath(), "Configuration file name.")
	var address = flags.String("address", "", "Address to listen on for commands.")
	var port = flags.IntP("port", "p", 0, "TCP port for the command channel.")
	var modeStr = flags.StringP("mode", "m", "", "Initial transmit mode: DATAC1, DATAC3 or DATAC4.")
	var volume = flags.IntP("volume", "v", 0, "Initial transmit volume in dB.")
	var follow = flags.Bool("follow", false, "Follow the mode of received signals.")
	var pttMethod = flags.String("ptt", "", "PTT method: none, serial or gpio.")
	var pttDevice = flags.String("ptt-device", "", "Serial port for PTT, e.g. /dev/ttyUSB0.")
	var logLevel = flags.String("log-level", "", "Log level: debug, info, warn or error.")
	var trace = flags.BoolP("trace", "t", false, "Log every command and response.")
	var timestampFormat = flags.StringP("timestamp-format", "T", "", "Precede traced commands with 'strftime' format time stamp.")
	var dnsSD = flags.Bool("dns-sd", false, "Announce the command port with DNS-SD.")
	var noAudio = flags.Bool("no-audio", false, "Run without a sound card; PTT TEST keys PTT only.")
	var version = flags.Bool("version", false, "Print version and exit.")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "freedvtnc - runtime command channel for a FreeDV soft modem TNC.\n\n")
		fmt.Fprintf(stderr, "Usage: freedvtnc [options]\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}

		return 2
	}

	if *version {
		freedvtnc.PrintVersion(stdout, false)

		return 0
	}

	var cfg, cfgErr = freedvtnc.LoadConfig(*configFileName)
	if cfgErr != nil {
		fmt.Fprintln(stderr, cfgErr)

		return 1
	}

	// Command line wins over the file, but only for options actually given.
	if flags.Changed("address") {
		cfg.Address = *address
	}

	if flags.Changed("port") {
		cfg.CommandPort = *port
	}

	if flags.Changed("mode") {
		var m, err = freedvtnc.ParseMode(*modeStr)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid mode %q. Valid: %s\n", *modeStr, freedvtnc.ModeNames())

			return 2
		}

		cfg.Mode = m
	}

	if flags.Changed("volume") {
		cfg.OutputVolume = *volume
	}

	if flags.Changed("follow") {
		cfg.Follow = *follow
	}

	if flags.Changed("ptt") {
		cfg.PTT.Method = *pttMethod
	}

	if flags.Changed("ptt-device") {
		cfg.PTT.Device = *pttDevice
	}

	if flags.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}

	if flags.Changed("dns-sd") {
		cfg.DNSSD = *dnsSD
	}

	var logger, logErr = freedvtnc.NewLogger(stderr, cfg.LogLevel)
	if logErr != nil {
		fmt.Fprintln(stderr, logErr)

		return 2
	}

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, *configFileName, *noAudio, *trace, *timestampFormat, logger); err != nil {
		logger.Error("exiting", "err", err)

		return 1
	}

	return 0
}

func serve(ctx context.Context, cfg freedvtnc.Config, configPath string, noAudio bool, trace bool, timestampFormat string, logger *log.Logger) error {
	var state = freedvtnc.NewModemState(cfg.Mode, cfg.OutputVolume, cfg.Follow)

	var collab = freedvtnc.Collaborators{ //nolint:exhaustruct
		Modem: modulator{logger: logger},
		Saver: freedvtnc.NewConfigStore(configPath, cfg),
	}

	var sink freedvtnc.AudioSink

	if !noAudio {
		var terminate, err = freedvtnc.InitAudio()
		if err != nil {
			return err
		}
		defer terminate()

		var out *freedvtnc.PortAudioSink

		out, err = freedvtnc.OpenPortAudioSink(cfg.Audio.OutputDevice, cfg.Audio.SampleRate)
		if err != nil {
			return err
		}
		defer out.Close()

		if err := out.SetGainDB(cfg.OutputVolume); err != nil {
			return err
		}

		sink = out
		collab.Gain = out
		collab.Queue = out

		var meter = freedvtnc.NewLevelMeter(state, cfg.Audio.BusyThreshold, freedvtnc.DefaultBusyHold)

		var in *freedvtnc.PortAudioSource

		in, err = freedvtnc.OpenPortAudioSource(cfg.Audio.InputDevice, cfg.Audio.SampleRate, meter)
		if err != nil {
			return err
		}

		var rxCtx, stopRx = context.WithCancel(ctx)
		var rxDone = make(chan struct{})

		// The capture stream may only be closed once Run has returned.
		defer func() {
			stopRx()
			<-rxDone
			in.Close()
		}()

		go func() {
			defer close(rxDone)

			if err := in.Run(rxCtx); err != nil {
				logger.Error("receive audio stopped", "err", err)
			}
		}()
	}

	var line, lineErr = freedvtnc.NewPTTLine(cfg.PTT)
	if lineErr != nil {
		return lineErr
	}

	var ptt = freedvtnc.NewPTTController(state, line, sink, logger)
	defer func() {
		if err := ptt.Shutdown(); err != nil {
			logger.Error("PTT shutdown", "err", err)
		}
	}()

	var exec = freedvtnc.NewExecutor(state, ptt, collab, logger)

	var server = freedvtnc.NewCommandServer(net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.CommandPort)), exec, logger)
	if err := server.SetTrace(trace, timestampFormat); err != nil {
		return err
	}

	if err := server.Listen(ctx); err != nil {
		return err
	}

	if cfg.DNSSD {
		if err := freedvtnc.AnnounceCommandPort(ctx, cfg.DNSSDName, cfg.CommandPort, logger); err != nil {
			logger.Warn("DNS-SD announcement failed", "err", err)
		}
	}

	var serveErr = make(chan error, 1)

	go func() {
		serveErr <- server.Serve()
	}()

	logger.Info("ready", "mode", cfg.Mode, "volume", cfg.OutputVolume, "follow", cfg.Follow)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			server.Close()

			return err
		}
	}

	return server.Close()
}
