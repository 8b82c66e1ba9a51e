package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	fs := newFlagSet("delete", c.io)
	yes := fs.Bool("y", false, "do not ask for confirmation")
	id, err := parseWithID(fs, args)
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

	c.io.Println("=== Delete Entry ===")
	c.io.Println()
	c.io.Println("About to delete:")
	c.io.Printf("  Title:    %s\n", entry.Title)
	c.io.Printf("  Location: %s\n", formatLocation(entry.Latitude, entry.Longitude))
	c.io.Println()

	if !*yes {
		ok, err := c.io.Confirm("Are you sure you want to delete this entry?")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !ok {
			c.io.Println("Deletion cancelled.")
			return nil
		}
	}

	if err := c.apiClient.DeleteEntry(ctx, id); err != nil {
		return c.authService.Check(ctx, err)
	}

	c.io.Println("✓ Entry deleted successfully!")
	return nil
}
