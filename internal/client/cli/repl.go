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
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
	Range(ctx context.Context, args []string) error
	Recent(ctx context.Context, args []string) error
	Watch(ctx context.Context) error
	Unwatch(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	ClearCache(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, help, exit"
	helpLoggedIn  = "Available commands: add, edit <id>, delete <id>, show <id>, (l)ist [page], search <text>, " +
		"stats, range <1D|1W|1M|6M|1Y|5Y|All>, recent [n], watch, unwatch, export, clearcache, logout, help, exit"
)

// runREPL reads one command per line from scanner and dispatches it to a.
// The loop exits on scanner EOF or when the user types "exit" or "quit".
//
// Commands other than register, login, help and exit need a session.
// Errors returned by handlers are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("wk%s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "register":
			report(a.Register(ctx))
			continue
		case "login":
			report(a.Login(ctx))
			continue
		}

		if !a.isLoggedIn() {
			if _, known := loggedInCommands[cmd]; known {
				printlnFn("Please log in first.")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "add":
			report(a.Add(ctx))
		case "edit":
			report(a.Edit(ctx, args))
		case "delete":
			report(a.Delete(ctx, args))
		case "show":
			report(a.Show(ctx, args))
		case "l", "list":
			report(a.List(ctx, args))
		case "search":
			report(a.Search(ctx, args))
		case "stats":
			report(a.Stats(ctx, args))
		case "range":
			report(a.Range(ctx, args))
		case "recent":
			report(a.Recent(ctx, args))
		case "watch":
			report(a.Watch(ctx))
		case "unwatch":
			report(a.Unwatch(ctx))
		case "export":
			report(a.Export(ctx, args))
		case "clearcache":
			report(a.ClearCache(ctx))
		case "logout":
			report(a.Logout(ctx))
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

var loggedInCommands = map[string]struct{}{
	"add": {}, "edit": {}, "delete": {}, "show": {}, "l": {}, "list": {}, "search": {},
	"stats": {}, "range": {}, "recent": {}, "watch": {}, "unwatch": {}, "export": {},
	"clearcache": {}, "logout": {},
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", describe(err))
	}
}
