package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// access says who may see and run a command.
type access int

const (
	anyone access = iota
	signedOut
	signedIn
	adminOnly
)

type command struct {
	name    string
	aliases []string
	usage   string
	help    string
	access  access
	run     func(ctx context.Context, args []string) error
}

// execIface is the surface the REPL needs. The real App satisfies it; tests
// provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	commands() []command
}

func allowed(a execIface, c command) bool {
	switch c.access {
	case signedOut:
		return !a.isLoggedIn()
	case signedIn:
		return a.isLoggedIn()
	case adminOnly:
		return a.isAdmin()
	}
	return true
}

func helpText(a execIface) string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range a.commands() {
		if !allowed(a, c) {
			continue
		}
		fmt.Fprintf(&b, "  %-28s %s\n", c.usage, c.help)
	}
	b.WriteString("  exit | quit")
	return b.String()
}

func lookup(a execIface, name string) (command, bool) {
	for _, c := range a.commands() {
		if c.name == name {
			return c, true
		}
		for _, alias := range c.aliases {
			if alias == name {
				return c, true
			}
		}
	}
	return command{}, false
}

// runREPL reads commands line by line from reader and dispatches them. The
// loop exits on EOF, once ctx is done, or when the user types "exit" or
// "quit".
//
// Commands the current identity may not use are reported instead of run,
// so no store call is made for them. Command errors are printed and the
// loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("filmrate%s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				printlnFn("Error:", err)
			}
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

		c, ok := lookup(a, name)
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if !allowed(a, c) {
			printlnFn(deniedMessage(c.access))
			continue
		}
		if err := c.run(ctx, args); err != nil {
			if errors.Is(err, errUsage) {
				printlnFn("Error:", err)
				printlnFn("Usage:", c.usage)
				continue
			}
			printlnFn("Error:", userMessage(err))
		}
	}
}

func deniedMessage(acc access) string {
	switch acc {
	case signedOut:
		return "You are already signed in. Use logout first."
	case adminOnly:
		return "This command requires admin privileges."
	}
	return "Please sign in first."
}
