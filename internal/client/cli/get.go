package cli

import (
	"context"
)

func (c *Cli) runGet(ctx context.Context, args []string) error {
	id, err := parseWithID(newFlagSet("get", c.io), args)
	if err != nil {
		return err
	}

	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	entry, err := c.apiClient.GetEntry(ctx, id)
	if err != nil {
		return c.authService.Check(ctx, err)
	}

	c.io.Println("=== Entry ===")
	c.io.Println()
	printEntry(c.io, entry)
	return nil
}
