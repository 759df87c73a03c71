package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

var errUsage = errors.New("usage")

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Record(ctx context.Context, args []string) error
	Stage(ctx context.Context, args []string) error
	Unstage(ctx context.Context, args []string) error
	Staged(ctx context.Context, args []string) error
	Submit(ctx context.Context, args []string) error
	Retry(ctx context.Context, args []string) error
	Attachments(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
}

const helpText = "Available commands: record, stage, unstage, staged, submit, retry, " +
	"attachments, show, download, delete, login, stats, exit"

// runREPL reads commands from scanner and dispatches them to a until EOF,
// "exit" or "quit". Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ca> %s > ", statusFn()))
		if !scanner.Scan() {
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
		case "record":
			err = a.Record(ctx, args)
		case "stage", "add":
			err = a.Stage(ctx, args)
		case "unstage", "rm":
			err = a.Unstage(ctx, args)
		case "staged", "ls":
			err = a.Staged(ctx, args)
		case "submit":
			err = a.Submit(ctx, args)
		case "retry":
			err = a.Retry(ctx, args)
		case "attachments", "l", "list":
			err = a.Attachments(ctx, args)
		case "show":
			err = a.Show(ctx, args)
		case "download", "get":
			err = a.Download(ctx, args)
		case "delete":
			err = a.Delete(ctx, args)
		case "login":
			err = a.Login(ctx, args)
		case "stats":
			err = a.Stats(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			if errors.Is(err, errUsage) {
				printlnFn(err.Error())
			} else {
				printlnFn("Error:", err)
			}
		}
	}
}

func usage(s string) error {
	return fmt.Errorf("%w: %s", errUsage, s)
}
