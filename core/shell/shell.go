// Package shell is the interactive read-eval loop.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/mkarren/gush/core/config"
	"github.com/mkarren/gush/core/engine"
	"github.com/mkarren/gush/core/logger"
	"github.com/mkarren/gush/core/parse"
	"github.com/mkarren/gush/core/signals"
)

var (
	errLineTooLong = errors.New("line too long")

	promptColor = color.New(color.FgGreen, color.Bold)
)

// Shell drives the prompt / read / parse / execute loop.
type Shell struct {
	cfg    *config.Configuration
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	engine *engine.Engine
	log    *logger.SessionLogger
}

// New builds a shell that reads lines from stdin and runs children attached
// to the given streams. lg may be nil to disable event logging.
func New(cfg *config.Configuration, lg *logger.Logger, stdin io.Reader, stdout, stderr io.Writer) *Shell {
	session := lg.NewSession()
	return &Shell{
		cfg:    cfg,
		in:     bufio.NewReader(stdin),
		out:    stdout,
		errOut: stderr,
		log:    session,
		engine: &engine.Engine{
			Stdin:  stdin,
			Stdout: stdout,
			Stderr: stderr,
			Log:    session,
		},
	}
}

// Run loops until end-of-input, a read error, or the exit built-in, and
// returns the status of the last executed pipeline (zero if none ran).
func (s *Shell) Run() int {
	signals.Install()
	s.log.RecordEvent(logger.Event{SessionStart: &logger.SessionStart{PID: os.Getpid()}})

	status := 0
	defer func() {
		s.log.RecordEvent(logger.Event{SessionEnd: &logger.SessionEnd{Status: status}})
	}()
	for {
		signals.ClearInterrupted()
		s.writePrompt()

		line, err := s.readLine()
		switch {
		case err == io.EOF:
			fmt.Fprintln(s.out)
			return status
		case err == errLineTooLong:
			fmt.Fprintf(s.errOut, "gush: line too long (limit %d bytes)\n", s.cfg.MaxLineLen)
			continue
		case err != nil:
			fmt.Fprintf(s.errOut, "gush: read: %v\n", err)
			return status
		}

		if line == "" {
			continue
		}
		if line == "exit" {
			return status
		}

		p, err := parse.Parse(line, s.cfg.Limits())
		if err != nil {
			fmt.Fprintf(s.errOut, "gush: parse error: %v\n", err)
			s.log.RecordEvent(logger.Event{ParseError: &logger.ParseError{Message: err.Error()}})
			continue
		}
		if len(p.Commands) == 0 {
			continue
		}

		status = s.engine.Run(p)
		if signals.WasInterrupted() {
			s.log.RecordEvent(logger.Event{Interrupt: &logger.Interrupt{}})
		}
	}
}

// readLine reads one line and strips its newline. io.EOF is reported only
// once no bytes remain, so a final line without a newline is still
// delivered.
func (s *Shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	if len(line) > s.cfg.MaxLineLen {
		return "", errLineTooLong
	}
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	return line, nil
}

func (s *Shell) writePrompt() {
	if s.cfg.Color {
		promptColor.Fprint(s.out, s.cfg.Prompt)
		return
	}
	fmt.Fprint(s.out, s.cfg.Prompt)
}
