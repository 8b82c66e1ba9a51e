package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/geojournal/pkg/api"
)

func (c *Cli) runProfile(ctx context.Context, args []string) error {
	fs := newFlagSet("profile", c.io)
	name := fs.String("name", "", "new display name")
	changePassword := fs.Bool("password", false, "prompt for a new password")
	if err := fs.Parse(args); err != nil {
		return usageError("profile: %v", err)
	}

	if _, err := c.authService.Authorize(ctx); err != nil {
		return err
	}

	var user *api.User
	var err error
	if *name == "" && !*changePassword {
		user, err = c.apiClient.Profile(ctx)
		if err != nil {
			return c.authService.Check(ctx, err)
		}
	} else {
		var req api.UpdateProfileRequest
		if *name != "" {
			req.Name = name
		}
		if *changePassword {
			password, err := c.io.ReadPassword("New password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			confirm, err := c.io.ReadPassword("Confirm password: ")
			if err != nil {
				return fmt.Errorf("failed to read password confirmation: %w", err)
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}
			req.Password = &password
		}
		user, err = c.apiClient.UpdateProfile(ctx, req)
		if err != nil {
			return c.authService.Check(ctx, err)
		}
		c.io.Println("✓ Profile updated")
	}

	if err := c.authService.RefreshProfile(ctx, user); err != nil {
		return err
	}

	c.io.Println("=== Profile ===")
	c.io.Printf("ID:    %s\n", user.ID)
	c.io.Printf("Name:  %s\n", user.Name)
	c.io.Printf("Email: %s\n", user.Email)
	return nil
}
