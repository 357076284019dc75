// Package shell exposes a string-keyed index as a line-oriented command
// language routed through the dispatcher.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/OCAP2/spacetime/internal/dispatcher"
	"github.com/OCAP2/spacetime/internal/timemap"
)

// Index is the index type the shell drives. The empty string is the empty
// entity.
type Index = timemap.Index[string]

// Option configures a Service.
type Option func(*Service)

// WithAsyncWrites queues mutating commands on a buffer of the given size.
// Reads wait for queued writes before they run.
func WithAsyncWrites(size int) Option {
	return func(s *Service) {
		s.asyncSize = size
	}
}

// WithLogger sets the logger used for command errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// Service binds an index to a dispatcher.
type Service struct {
	ix        *Index
	d         *dispatcher.Dispatcher
	log       *slog.Logger
	asyncSize int
	writes    map[string]bool
}

type command struct {
	name  string
	usage string
	write bool
	run   func(args []string) (string, error)
}

// New registers one handler per index operation on d.
func New(ix *Index, d *dispatcher.Dispatcher, opts ...Option) *Service {
	s := &Service{
		ix:     ix,
		d:      d,
		log:    slog.Default(),
		writes: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, c := range s.commands() {
		opts := []dispatcher.Option{dispatcher.Usage(c.usage), dispatcher.Logged()}
		if c.write && s.asyncSize > 0 {
			opts = append(opts, dispatcher.Buffered(s.asyncSize), dispatcher.Blocking())
		}
		if c.write {
			s.writes[c.name] = true
		}
		run := c.run
		d.Register(c.name, func(e dispatcher.Event) (any, error) {
			return run(e.Args)
		}, opts...)
	}
	return s
}

// Execute runs one command line and returns its output. Blank lines return
// an empty string.
func (s *Service) Execute(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	name := strings.ToLower(fields[0])
	if name == "help" {
		return s.help(), nil
	}

	if !s.writes[name] {
		s.d.Drain()
	}
	result, err := s.d.Dispatch(dispatcher.Event{
		Command:   name,
		Args:      fields[1:],
		Timestamp: time.Now(),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprint(result), nil
}

// Run reads newline-delimited commands from in and writes results to out
// until quit, EOF or ctx is done. Command errors are printed and do not stop
// the loop.
func (s *Service) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-readCtx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				s.d.Drain()
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			cmd := strings.TrimSpace(line)
			if cmd == "quit" || cmd == "exit" {
				s.d.Drain()
				return nil
			}
			result, err := s.Execute(cmd)
			if err != nil {
				s.log.Debug("command error", "line", cmd, "error", err)
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			if result != "" {
				fmt.Fprintln(out, result)
			}
		}
	}
}

func (s *Service) help() string {
	var b strings.Builder
	b.WriteString("commands:")
	for _, c := range s.d.Commands() {
		fmt.Fprintf(&b, "\n  %s", c.Usage)
	}
	b.WriteString("\n  help\n  quit")
	return b.String()
}
