package freedvtnc

/*------------------------------------------------------------------
 *
 * Purpose:   	Provide the ASCII command channel over TCP.
 *
 * Description:	This is separate from the KISS TCP port, which carries the
 *		packet data.  Any number of client applications can attach
 *		at once, e.g. a portal polling STATUS while an operator
 *		changes the mode by hand.
 *
 *		Each connection gets its own goroutine which reads lines,
 *		runs them through the parser and the executor, and writes
 *		back exactly one line per command, in order.
 *
 *		The only thing shared between connections is the modem
 *		state, through the executor.
 *
 *		There are no timeouts.  A quiet client simply stays
 *		attached until it, or we, close the socket.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"golang.org/x/sys/unix"
)

// DefaultCommandPort is the TCP port of the command channel.
const DefaultCommandPort = 8002

// CommandExecutor is what the server hands each parsed command to.
type CommandExecutor interface {
	Execute(cmd Command) Response
}

type CommandServer struct {
	addr   string
	exec   CommandExecutor
	logger *log.Logger

	trace     bool
	timestamp *strftime.Strftime

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

func NewCommandServer(addr string, exec CommandExecutor, logger *log.Logger) *CommandServer {
	if logger == nil {
		logger = log.Default()
	}

	return &CommandServer{ //nolint:exhaustruct
		addr:   addr,
		exec:   exec,
		logger: logger.WithPrefix("cmdserver"),
		conns:  make(map[net.Conn]struct{}),
	}
}

// SetTrace turns on logging of every command and response.  A non empty
// timestampFormat, in strftime form, is put in front of each traced line.
//
// Traced command lines are the client's own bytes, quoted.  Replies never
// repeat client input, but the trace does; it is off unless asked for.
func (s *CommandServer) SetTrace(on bool, timestampFormat string) error {
	var ts *strftime.Strftime

	if timestampFormat != "" {
		var err error

		ts, err = strftime.New(timestampFormat)
		if err != nil {
			return fmt.Errorf("invalid timestamp format %q: %w", timestampFormat, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.trace = on
	s.timestamp = ts

	return nil
}

// reuseAddr lets a restarted TNC bind its port again straight away,
// rather than waiting for old connections in TIME_WAIT.
func reuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error

	var err = c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}

	return sockErr
}

// Listen binds the command port.
func (s *CommandServer) Listen(ctx context.Context) error {
	var lc = net.ListenConfig{Control: reuseAddr} //nolint:exhaustruct

	var listener, err = lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("command server listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("listening", "addr", listener.Addr())

	return nil
}

// Addr is the bound address, or nil before Listen.
func (s *CommandServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

func (s *CommandServer) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// Serve accepts connections until Close is called, then returns nil.
func (s *CommandServer) Serve() error {
	s.mu.Lock()
	var listener = s.listener
	s.mu.Unlock()

	if listener == nil {
		return errors.New("command server: Serve called before Listen")
	}

	for {
		var conn, err = listener.Accept()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				return nil
			}

			// Most likely out of file descriptors.  Keep going; existing clients are unaffected.
			s.logger.Error("accept failed", "err", err)
			time.Sleep(100 * time.Millisecond)

			continue
		}

		if !s.track(conn) {
			conn.Close()

			return nil
		}

		go s.handle(conn)
	}
}

// ListenAndServe is Listen followed by Serve.
func (s *CommandServer) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}

	return s.Serve()
}

func (s *CommandServer) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	s.conns[conn] = struct{}{}
	s.wg.Add(1)

	return true
}

func (s *CommandServer) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conns, conn)
}

// Close stops accepting, disconnects every client and waits for their handlers to finish.
func (s *CommandServer) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}

	for conn := range s.conns {
		conn.Close()
	}

	s.mu.Unlock()

	s.wg.Wait()

	return err
}

func (s *CommandServer) tracef(remote string, format string, a ...any) {
	s.mu.Lock()
	var trace, ts = s.trace, s.timestamp
	s.mu.Unlock()

	if !trace {
		return
	}

	var msg = fmt.Sprintf(format, a...)
	if ts != nil {
		msg = ts.FormatString(time.Now()) + " " + msg
	}

	s.logger.Info(msg, "remote", remote)
}

func (s *CommandServer) handle(conn net.Conn) {
	var remote = conn.RemoteAddr().String()

	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("connection handler panicked", "remote", remote, "panic", r)
		}
	}()

	s.logger.Debug("client attached", "remote", remote)

	var lr = NewLineReader(conn, MaxLineLength)

	for {
		var line, err = lr.ReadLine()

		var resp Response

		switch {
		case errors.Is(err, ErrLineTooLong):
			resp = errorResponse("Line too long")
		case err != nil:
			if !errors.Is(err, io.EOF) && !s.isClosed() {
				s.logger.Debug("read failed", "remote", remote, "err", err)
			}

			s.logger.Debug("client detached", "remote", remote)

			return
		default:
			var cmd = ParseCommand(line)
			if cmd.Kind == CommandEmpty {
				continue
			}

			s.tracef(remote, "< %q", line)
			resp = s.exec.Execute(cmd)
		}

		s.tracef(remote, "> %s", resp)

		if _, err := io.WriteString(conn, resp.String()+"\n"); err != nil {
			s.logger.Debug("write failed", "remote", remote, "err", err)

			return
		}
	}
}
