package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Send commands to a running FreeDV TNC from the shell.
 *
 * Usage:	freedvtnc-ctl  [options]  command [argument]
 *
 * Example:	freedvtnc-ctl  mode datac3
 *		freedvtnc-ctl  -H 192.168.1.20  status
 *
 *		With no command, lines are read from standard input and
 *		sent one at a time.
 *
 *		Exit status is 0 when every command got an OK, 1 if any
 *		got an ERROR, 2 for usage or connection problems.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	freedvtnc "github.com/doismellburning/freedvtnc/src"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	var flags = pflag.NewFlagSet("freedvtnc-ctl", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	var host = flags.StringP("host", "H", "localhost", "Host running the TNC.")
	var port = flags.IntP("port", "p", freedvtnc.DefaultCommandPort, "TCP port of the command channel.")
	var timeout = flags.Duration("timeout", 10*time.Second, "Give up on a command after this long.")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: freedvtnc-ctl [options] [command [argument]]\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}

		return 2
	}

	var addr = net.JoinHostPort(*host, strconv.Itoa(*port))

	var lines []string

	if flags.NArg() > 0 {
		lines = []string{strings.Join(flags.Args(), " ")}
	} else {
		var scanner = bufio.NewScanner(stdin)
		for scanner.Scan() {
			if strings.TrimSpace(scanner.Text()) != "" {
				lines = append(lines, scanner.Text())
			}
		}
	}

	var status = 0

	for _, line := range lines {
		var ctx, cancel = context.WithTimeout(context.Background(), *timeout)
		var reply, err = freedvtnc.SendCommand(ctx, addr, line)

		cancel()

		switch {
		case errors.Is(err, freedvtnc.ErrCommandFailed):
			fmt.Fprintln(stdout, reply)

			status = 1
		case err != nil:
			fmt.Fprintln(stderr, err)

			return 2
		default:
			fmt.Fprintln(stdout, reply)
		}
	}

	return status
}
