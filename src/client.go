package freedvtnc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ErrCommandFailed is returned by SendCommand when the TNC answers ERROR.
var ErrCommandFailed = errors.New("command failed")

// SendCommand connects to the command port at addr, sends one command line
// and returns the reply line without its terminator.
// An ERROR reply is returned along with an error wrapping ErrCommandFailed.
func SendCommand(ctx context.Context, addr string, line string) (string, error) {
	var d net.Dialer

	var conn, err = d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(10 * time.Second))
	}

	if _, err := fmt.Fprintf(conn, "%s\n", strings.TrimRight(line, "\r\n")); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}

	var reply, readErr = bufio.NewReader(conn).ReadString('\n')
	if readErr != nil {
		return "", fmt.Errorf("read reply: %w", readErr)
	}

	reply = strings.TrimRight(reply, "\r\n")

	if strings.HasPrefix(reply, "ERROR") {
		return reply, fmt.Errorf("%w: %s", ErrCommandFailed, strings.TrimPrefix(reply, "ERROR "))
	}

	return reply, nil
}
