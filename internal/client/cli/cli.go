// Package cli реализует команды консольного клиента журнала
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/geojournal/internal/client/api"
	"github.com/iudanet/geojournal/internal/client/auth"
	"github.com/iudanet/geojournal/internal/client/iocli"
	"github.com/iudanet/geojournal/internal/client/storage"
	"github.com/iudanet/geojournal/internal/client/unlock"
)

// ErrUsage помечает ошибки неверного вызова команды
var ErrUsage = errors.New("usage error")

type Cli struct {
	io          iocli.IO
	apiClient   *api.Client
	authService *auth.Service
	gate        unlock.Gate
	pin         *unlock.PIN
}

// New собирает CLI. pin служит и gate для команд журнала, и командой lock.
func New(io iocli.IO, apiClient *api.Client, authService *auth.Service, pin *unlock.PIN) *Cli {
	c := &Cli{
		io:          io,
		apiClient:   apiClient,
		authService: authService,
		pin:         pin,
	}
	if pin != nil {
		c.gate = pin
	}
	return c
}

// requireSession loads a live session and passes the local unlock gate
func (c *Cli) requireSession(ctx context.Context) (*storage.Session, error) {
	session, err := c.authService.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := unlock.Require(ctx, c.gate); err != nil {
		return nil, err
	}
	return session, nil
}

func usageError(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, a...))
}

func PrintUsage(io iocli.IO) {
	io.Println("GeoJournal Client")
	io.Println()
	io.Println("Usage:")
	io.Println("  geojournal [OPTIONS] COMMAND [ARGS]")
	io.Println()
	io.Println("Options:")
	io.Println("  --version                    Show version information")
	io.Println("  --server URL                 Server URL (default: http://localhost:5000)")
	io.Println("  --db PATH                    Path to local database (default: geojournal-client.db)")
	io.Println()
	io.Println("Commands:")
	io.Println("  register                     Register new user")
	io.Println("  login                        Login to server")
	io.Println("  logout                       Forget the local session")
	io.Println("  status                       Show session and lock status")
	io.Println("  profile [-name N] [-password]  Show or change profile")
	io.Println("  add -image PATH [-title T] [-description D] [-lat N] [-lon N]")
	io.Println("                               Create an entry")
	io.Println("  list [-page N] [-limit N] [-from DATE] [-to DATE]")
	io.Println("                               List entries")
	io.Println("  get <id>                     Show an entry")
	io.Println("  update <id> [-title T] [-description D] [-lat N] [-lon N]")
	io.Println("                               Change an entry")
	io.Println("  delete [-y] <id>             Delete an entry")
	io.Println("  lock set|clear               Turn the local PIN lock on or off")
	io.Println()
	io.Println("Examples:")
	io.Println("  geojournal register")
	io.Println("  geojournal add -image lake.jpg -title 'Lake' -lat 46.5 -lon -120.25")
	io.Println("  geojournal list -from 2024-01-01 -to 2024-01-31")
	io.Println("  geojournal --server https://example.com login")
}
