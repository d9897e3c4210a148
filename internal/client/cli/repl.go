package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

type commandFn func(ctx context.Context, args []string) error

// command is one REPL verb. Admin-only commands are refused while the
// current role is not admin.
type command struct {
	name      string
	usage     string
	adminOnly bool
	run       commandFn
}

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isAdmin() bool
	commands() []command
}

var errAdminOnly = errors.New("this command needs the admin role (type 'admin' to log in)")

// runREPL starts a simple read-eval-print loop for the ProLens CLI.
//
// It reads a line from in, parses the first token as the command and
// dispatches it with the remaining tokens as arguments. Command errors are
// printed inline and never end the loop. The loop exits on EOF or when the
// user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	byName := map[string]command{}
	for _, c := range a.commands() {
		byName[c.name] = c
	}

	for {
		printlnFn(fmt.Sprintf("prolens %s> ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printlnFn(helpText(a))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		c, ok := byName[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if c.adminOnly && !a.isAdmin() {
			printlnFn("Error:", errAdminOnly)
			continue
		}
		if err := c.run(ctx, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func helpText(a execIface) string {
	var lines []string
	for _, c := range a.commands() {
		if c.adminOnly && !a.isAdmin() {
			continue
		}
		lines = append(lines, "  "+c.usage)
	}
	sort.Strings(lines)
	return "Available commands:\n" + strings.Join(lines, "\n") + "\n  help\n  exit"
}
