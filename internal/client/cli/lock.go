package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/geojournal/internal/client/unlock"
)

func (c *Cli) runLock(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("Usage: geojournal lock set|clear")
	}
	if c.pin == nil {
		return fmt.Errorf("local lock is not available")
	}

	switch args[0] {
	case "set":
		// смена PIN требует старый PIN
		if err := unlock.Require(ctx, c.pin); err != nil {
			return err
		}
		pin, err := c.io.ReadPassword("New PIN (4-8 digits): ")
		if err != nil {
			return fmt.Errorf("failed to read pin: %w", err)
		}
		if err := unlock.ValidatePIN(pin); err != nil {
			return err
		}
		confirm, err := c.io.ReadPassword("Confirm PIN: ")
		if err != nil {
			return fmt.Errorf("failed to read pin: %w", err)
		}
		if pin != confirm {
			return fmt.Errorf("PINs do not match")
		}
		if err := c.pin.Set(ctx, pin); err != nil {
			return err
		}
		c.io.Println("✓ Local lock enabled")
	case "clear":
		if !c.pin.Enabled(ctx) {
			c.io.Println("Local lock is already off")
			return nil
		}
		if err := unlock.Require(ctx, c.pin); err != nil {
			return err
		}
		if err := c.pin.Clear(ctx); err != nil {
			return err
		}
		c.io.Println("✓ Local lock disabled")
	default:
		return usageError("unknown lock action: %s. Use set or clear", args[0])
	}
	return nil
}
