package cli

import (
	"context"
)

// Run выполняет команду. Ошибка неверного вызова оборачивает ErrUsage.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "profile":
		return c.runProfile(ctx, args)
	case "add":
		return c.runAdd(ctx, args)
	case "list":
		return c.runList(ctx, args)
	case "get":
		return c.runGet(ctx, args)
	case "update":
		return c.runUpdate(ctx, args)
	case "delete":
		return c.runDelete(ctx, args)
	case "lock":
		return c.runLock(ctx, args)
	case "help", "":
		PrintUsage(c.io)
		return nil
	default:
		return usageError("unknown command: %s", command)
	}
}
