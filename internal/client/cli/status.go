package cli

import (
	"context"
	"errors"
	"time"

	"github.com/iudanet/geojournal/internal/client/auth"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Session Status ===")
	c.io.Println()

	session, err := c.authService.Session(ctx)
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		c.io.Println("Status: Not authenticated")
		c.io.Println("Run 'geojournal login' to authenticate.")
	case err != nil:
		return err
	default:
		c.io.Println("Status: Authenticated")
		c.io.Printf("User: %s <%s>\n", session.Name, session.Email)
		if !session.ExpiresAt.IsZero() {
			c.io.Printf("Token expires: %s\n", session.ExpiresAt.Local().Format(time.RFC3339))
			if remaining := time.Until(session.ExpiresAt); remaining > 0 {
				c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
			} else {
				c.io.Println("⚠️  Token has expired. Please login again.")
			}
		}
	}

	if c.gate != nil && c.gate.Supported() {
		if c.gate.Enabled(ctx) {
			c.io.Println("Local lock: on")
		} else {
			c.io.Println("Local lock: off")
		}
	}
	return nil
}
