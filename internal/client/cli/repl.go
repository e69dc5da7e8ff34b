package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL needs. App satisfies it; tests
// provide a stub.
type execIface interface {
	isLoggedIn() bool
	report(ctx context.Context, cmd string, err error)

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error

	List(ctx context.Context, search string) error
	Mine(ctx context.Context) error
	More(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Add(ctx context.Context) error
	Delete(ctx context.Context, id string) error

	Favorite(ctx context.Context, id string) error
	Unfavorite(ctx context.Context, id string) error
	Favorites(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: (l)ist [search], mine, more, show <id>, add, delete <id>, " +
		"fav <id>, unfav <id>, favs, me, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// Command errors go to a.report. The loop exits on EOF or "exit"/"quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("rb %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		needID := func() (string, bool) {
			if len(args) != 1 {
				printlnFn("Usage:", cmd, "<id>")
				return "", false
			}
			return args[0], true
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "me":
			cmdErr = a.Me(ctx)
		case "l", "list":
			cmdErr = a.List(ctx, strings.Join(args, " "))
		case "mine":
			cmdErr = a.Mine(ctx)
		case "more":
			cmdErr = a.More(ctx)
		case "show":
			if id, ok := needID(); ok {
				cmdErr = a.Show(ctx, id)
			}
		case "add":
			cmdErr = a.Add(ctx)
		case "delete":
			if id, ok := needID(); ok {
				cmdErr = a.Delete(ctx, id)
			}
		case "fav":
			if id, ok := needID(); ok {
				cmdErr = a.Favorite(ctx, id)
			}
		case "unfav":
			if id, ok := needID(); ok {
				cmdErr = a.Unfavorite(ctx, id)
			}
		case "favs":
			cmdErr = a.Favorites(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		a.report(ctx, cmd, cmdErr)

		if err != nil {
			return
		}
	}
}
