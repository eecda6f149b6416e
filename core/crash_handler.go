package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

// Finisher restores external state (terminal, audio device) before a crash report
type Finisher interface {
	Fini()
}

var (
	crashMu       sync.Mutex
	crashTerminal Finisher
	crashOutput   io.Writer = os.Stderr
	crashExit               = os.Exit
)

// SetCrashTerminal registers the screen to restore on panic; nil clears it
func SetCrashTerminal(f Finisher) {
	crashMu.Lock()
	crashTerminal = f
	crashMu.Unlock()
}

// HandleCrash is the unified panic handler that restores the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	term, out, exit := crashTerminal, crashOutput, crashExit
	crashMu.Unlock()

	if term != nil {
		term.Fini()
	}

	fmt.Fprintf(out, "\nCRASH DETECTED: %v\n", r)
	fmt.Fprintf(out, "Stack Trace:\n%s\n", debug.Stack())

	exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
