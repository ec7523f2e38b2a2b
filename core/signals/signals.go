// Package signals owns the shell's interrupt handling and the shared
// foreground-process-group cell.
package signals

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// foreground holds the pgid of the currently-running foreground pipeline,
// or zero when none. It is the one piece of state shared between the
// executor and the interrupt handler, so all access is atomic.
var (
	foreground  int32
	interrupted uint32
	installOnce sync.Once
)

// SetForeground publishes pgid as the current foreground process group.
func SetForeground(pgid int) {
	atomic.StoreInt32(&foreground, int32(pgid))
}

// ClearForeground marks that no foreground pipeline is running.
func ClearForeground() {
	atomic.StoreInt32(&foreground, 0)
}

// ForegroundPGID returns the current foreground process group, zero if none.
func ForegroundPGID() int {
	return int(atomic.LoadInt32(&foreground))
}

// ClearInterrupted resets the was-interrupted flag. The REPL calls this at
// the top of each iteration.
func ClearInterrupted() {
	atomic.StoreUint32(&interrupted, 0)
}

// WasInterrupted reports whether an interrupt arrived since the last clear.
func WasInterrupted() bool {
	return atomic.LoadUint32(&interrupted) == 1
}

// Install sets up the shell's signal disposition: SIGINT is caught and
// forwarded to the foreground process group, SIGTSTP is ignored. Safe to
// call more than once; installation happens only the first time.
//
// The handler goroutine touches nothing but the two atomics and the kill
// syscall, mirroring the constraints of an async-signal-safe handler.
func Install() {
	installOnce.Do(func() {
		signal.Ignore(unix.SIGTSTP)

		ch := make(chan os.Signal, 1)
		signal.Notify(ch, unix.SIGINT)
		go func() {
			for range ch {
				atomic.StoreUint32(&interrupted, 1)
				if pgid := ForegroundPGID(); pgid > 0 {
					// Negative pid addresses the whole group.
					_ = unix.Kill(-pgid, unix.SIGINT)
				}
			}
		}()
	})
}
