package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Today(ctx context.Context) error
	ShowDay(ctx context.Context, day string) error
	Week(ctx context.Context) error
	Days(ctx context.Context) error
	Slots(ctx context.Context) error
	Sync(ctx context.Context) error
	Refresh(ctx context.Context) error
	Status(ctx context.Context) error
	Maintenance(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error
}

const helpText = "Available commands: today, day <name>, week, days, slots, sync, refresh, status, maintenance, whoami, logout, exit"

// runREPL starts a simple read–eval–print loop for the routine shell.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on scanner EOF or
// when the user types "exit" or "quit". Command errors are printed and the
// loop continues. The prompt is only printed when interactive is set.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, interactive bool) {
	for {
		if interactive {
			printlnFn(fmt.Sprintf("routine %s > ", statusFn()))
		}
		if ctx.Err() != nil || !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "t", "today":
			err = a.Today(ctx)

		case "d", "day":
			if len(args) == 0 {
				printlnFn("Usage: day <name>")
				continue
			}
			err = a.ShowDay(ctx, args[0])

		case "w", "week":
			err = a.Week(ctx)

		case "days":
			err = a.Days(ctx)

		case "slots":
			err = a.Slots(ctx)

		case "sync":
			err = a.Sync(ctx)

		case "refresh":
			err = a.Refresh(ctx)

		case "status":
			err = a.Status(ctx)

		case "maintenance":
			err = a.Maintenance(ctx)

		case "whoami":
			err = a.WhoAmI(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(describeError(err))
		}
	}
}
