// Package engine runs parsed pipelines as trees of child processes wired
// together by anonymous pipes.
package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/mkarren/gush/core/logger"
	"github.com/mkarren/gush/core/parse"
	"github.com/mkarren/gush/core/signals"
)

// Engine executes pipelines. The zero streams default to the process's own
// standard descriptors via New; tests substitute buffers.
type Engine struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    *logger.SessionLogger
}

// New returns an engine attached to the process's standard streams.
func New(log *logger.SessionLogger) *Engine {
	return &Engine{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Log:    log,
	}
}

// pipePair is one anonymous pipe; ends are nilled out as they are closed so
// every close happens exactly once.
type pipePair struct {
	r, w *os.File
}

func makePipes(n int) ([]pipePair, error) {
	pipes := make([]pipePair, n)
	for i := range pipes {
		r, w, err := os.Pipe()
		if err != nil {
			closePipes(pipes)
			return nil, err
		}
		pipes[i] = pipePair{r: r, w: w}
	}
	return pipes, nil
}

func closeReadEnd(pipes []pipePair, i int) {
	if i >= 0 && i < len(pipes) && pipes[i].r != nil {
		pipes[i].r.Close()
		pipes[i].r = nil
	}
}

func closeWriteEnd(pipes []pipePair, i int) {
	if i >= 0 && i < len(pipes) && pipes[i].w != nil {
		pipes[i].w.Close()
		pipes[i].w = nil
	}
}

func closePipes(pipes []pipePair) {
	for i := range pipes {
		closeReadEnd(pipes, i)
		closeWriteEnd(pipes, i)
	}
}

func closeFiles(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

// Run executes a pipeline and returns the shell's next "last status".
//
// A foreground run returns the last command's exit code, or 128 plus the
// signal number if it was signaled. A background run prints the last
// child's pid and returns zero immediately; its children are reaped by a
// monitor goroutine. An empty pipeline returns zero.
//
// On return no pipe or redirection descriptor opened here remains open in
// the shell process, and for foreground runs the foreground-group cell is
// back to zero.
func (e *Engine) Run(p *parse.Pipeline) int {
	n := len(p.Commands)
	if n == 0 {
		return 0
	}
	background := p.Commands[n-1].Background

	for i := range p.Commands {
		if len(p.Commands[i].Argv) == 0 {
			fmt.Fprintln(e.Stderr, "gush: empty command in pipeline")
			return 1
		}
	}

	pipes, err := makePipes(n - 1)
	if err != nil {
		fmt.Fprintf(e.Stderr, "gush: pipe: %v\n", err)
		return 1
	}
	defer closePipes(pipes)

	cmds := make([]*exec.Cmd, n)
	lastStatus := 0
	foregroundSet := false

	for i := range p.Commands {
		c := &p.Commands[i]
		cmd := exec.Command(c.Argv[0], c.Argv[1:]...)
		// Setpgid is applied by the kernel between fork and exec, so the
		// child is in its own group before either side continues.
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		cmd.Stderr = e.Stderr

		if i > 0 {
			cmd.Stdin = pipes[i-1].r
		} else {
			cmd.Stdin = e.Stdin
		}
		if i < n-1 {
			cmd.Stdout = pipes[i].w
		} else {
			cmd.Stdout = e.Stdout
		}

		// Redirections override pipe wiring. The files are opened by the
		// shell and handed to the child; the shell's copies are closed
		// once the child has started.
		var opened []*os.File
		openFailed := false
		if c.InputFile != "" {
			f, err := os.Open(c.InputFile)
			if err != nil {
				fmt.Fprintf(e.Stderr, "gush: %v\n", err)
				openFailed = true
			} else {
				cmd.Stdin = f
				opened = append(opened, f)
			}
		}
		if !openFailed && c.OutputFile != "" {
			flags := os.O_WRONLY | os.O_CREATE
			if c.AppendOutput {
				flags |= os.O_APPEND
			} else {
				flags |= os.O_TRUNC
			}
			f, err := os.OpenFile(c.OutputFile, flags, 0644)
			if err != nil {
				fmt.Fprintf(e.Stderr, "gush: %v\n", err)
				openFailed = true
			} else {
				cmd.Stdout = f
				opened = append(opened, f)
			}
		}

		if openFailed {
			// The slot behaves as a child that exited 1 without running.
			// Its pipe ends still close so end-of-file propagates.
			closeFiles(opened)
			closeReadEnd(pipes, i-1)
			closeWriteEnd(pipes, i)
			if i == n-1 {
				lastStatus = 1
			}
			continue
		}

		err := cmd.Start()
		closeFiles(opened)
		closeReadEnd(pipes, i-1)
		closeWriteEnd(pipes, i)

		if err != nil {
			var execErr *exec.Error
			if errors.As(err, &execErr) {
				// The program could not be found or run; the slot behaves
				// as a child that exited 127.
				fmt.Fprintf(e.Stderr, "gush: %s: %v\n", c.Argv[0], execErr.Err)
				if i == n-1 {
					lastStatus = 127
				}
				continue
			}

			// Process creation itself failed. Abandon the pipeline: close
			// the remaining pipe ends and reap what already started.
			fmt.Fprintf(e.Stderr, "gush: %v\n", err)
			closePipes(pipes)
			for _, started := range cmds {
				if started != nil {
					started.Wait()
				}
			}
			signals.ClearForeground()
			return 1
		}

		cmds[i] = cmd
		if !background && !foregroundSet {
			// The leader's pid doubles as the group id.
			signals.SetForeground(cmd.Process.Pid)
			foregroundSet = true
		}
	}

	if background {
		pid := 0
		for i := n - 1; i >= 0; i-- {
			if cmds[i] != nil {
				pid = cmds[i].Process.Pid
				break
			}
		}
		if pid != 0 {
			fmt.Fprintf(e.Stdout, "[%d]\n", pid)
			e.Log.RecordEvent(logger.Event{BackgroundLaunch: &logger.BackgroundLaunch{PID: pid}})
		}
		go e.reap(cmds, programNames(p))
		return 0
	}

	status := lastStatus
	for i, cmd := range cmds {
		if cmd == nil {
			continue
		}
		err := cmd.Wait()
		if i == n-1 {
			status = exitStatus(cmd, err)
		}
	}
	signals.ClearForeground()

	e.Log.RecordEvent(logger.Event{PipelineRun: &logger.PipelineRun{
		Programs: programNames(p),
		Status:   status,
	}})
	return status
}

// reap waits for a background pipeline's children so they don't linger as
// zombies, then records the terminal status.
func (e *Engine) reap(cmds []*exec.Cmd, programs []string) {
	status := 0
	for i, cmd := range cmds {
		if cmd == nil {
			continue
		}
		err := cmd.Wait()
		if i == len(cmds)-1 {
			status = exitStatus(cmd, err)
		}
	}
	e.Log.RecordEvent(logger.Event{PipelineRun: &logger.PipelineRun{
		Programs:   programs,
		Background: true,
		Status:     status,
	}})
}

// exitStatus maps a reaped child to the shell's status convention: the exit
// code for a normal exit, 128 plus the signal number otherwise.
func exitStatus(cmd *exec.Cmd, waitErr error) int {
	if state := cmd.ProcessState; state != nil {
		if ws, ok := state.Sys().(syscall.WaitStatus); ok {
			if ws.Signaled() {
				return 128 + int(ws.Signal())
			}
			return ws.ExitStatus()
		}
	}
	if waitErr != nil {
		return 1
	}
	return 0
}

func programNames(p *parse.Pipeline) []string {
	out := make([]string, len(p.Commands))
	for i, c := range p.Commands {
		if len(c.Argv) > 0 {
			out[i] = c.Argv[0]
		}
	}
	return out
}
