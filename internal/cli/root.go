package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/coinkeeper/internal/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context) error
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	RequestReset(ctx context.Context) error
	ConfirmReset(ctx context.Context) error
	Profile(ctx context.Context) error
	AddExpense(ctx context.Context) error
	AddIncome(ctx context.Context) error
	List(ctx context.Context, kind models.RecordKind) error
	Edit(ctx context.Context, kind models.RecordKind, id string) error
	Delete(ctx context.Context, kind models.RecordKind, id string) error
	Stats(ctx context.Context) error
	Plan(ctx context.Context) error
}

func (a *App) getStatus() string {
	user := a.auth.CurrentUser()
	if user == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", user.Email)
}

func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to CoinKeeper CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

// kindFromArg maps a command argument to a record kind. Defaults to expense,
// which is what people list most.
func kindFromArg(arg string) (models.RecordKind, bool) {
	switch arg {
	case "", "expense", "expenses", "e":
		return models.KindExpense, true
	case "income", "incomes", "i":
		return models.KindIncome, true
	}
	return "", false
}

// runREPL reads a line from the scanner, parses the first token as the
// command and dispatches to methods on 'a'. The loop exits on scanner EOF or
// when the user types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers print their
// own errors. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ck %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: expense, income, (l)ist [expenses|incomes], edit <expenses|incomes> <id>, del <expenses|incomes> <id>, stats, plan, profile, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, reset, confirm, exit")
			}

		case "signup", "register":
			_ = a.SignUp(ctx)

		case "login":
			_ = a.SignIn(ctx)

		case "logout":
			_ = a.SignOut(ctx)

		case "reset":
			_ = a.RequestReset(ctx)

		case "confirm":
			_ = a.ConfirmReset(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "expense":
			_ = a.AddExpense(ctx)

		case "income":
			_ = a.AddIncome(ctx)

		case "l", "list":
			arg := ""
			if len(args) > 0 {
				arg = args[0]
			}
			kind, ok := kindFromArg(arg)
			if !ok {
				printlnFn("Usage: list [expenses|incomes]")
				continue
			}
			_ = a.List(ctx, kind)

		case "edit":
			if len(args) < 2 {
				printlnFn("Usage: edit <expenses|incomes> <id>")
				continue
			}
			kind, ok := kindFromArg(args[0])
			if !ok {
				printlnFn("Usage: edit <expenses|incomes> <id>")
				continue
			}
			_ = a.Edit(ctx, kind, args[1])

		case "del", "delete":
			if len(args) < 2 {
				printlnFn("Usage: del <expenses|incomes> <id>")
				continue
			}
			kind, ok := kindFromArg(args[0])
			if !ok {
				printlnFn("Usage: del <expenses|incomes> <id>")
				continue
			}
			_ = a.Delete(ctx, kind, args[1])

		case "stats":
			_ = a.Stats(ctx)

		case "plan":
			_ = a.Plan(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
