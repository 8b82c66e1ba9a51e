package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iudanet/geojournal/internal/client/api"
)

func (c *Cli) runAdd(ctx context.Context, args []string) error {
	fs := newFlagSet("add", c.io)
	imagePath := fs.String("image", "", "path to the photo (required)")
	title := fs.String("title", "", "entry title")
	description := fs.String("description", "", "entry description")
	lat := fs.String("lat", "", "latitude, -90..90")
	lon := fs.String("lon", "", "longitude, -180..180")
	if err := fs.Parse(args); err != nil {
		return usageError("add: %v", err)
	}
	if *imagePath == "" {
		return usageError("missing image. Usage: geojournal add -image PATH")
	}

	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	for _, p := range []struct {
		value  *string
		prompt string
	}{
		{title, "Title: "},
		{lat, "Latitude: "},
		{lon, "Longitude: "},
	} {
		if *p.value != "" {
			continue
		}
		v, err := c.io.ReadInput(p.prompt)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		*p.value = v
	}

	file, err := os.Open(*imagePath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	entry, err := c.apiClient.CreateEntry(ctx, api.NewEntry{
		Title:       *title,
		Description: *description,
		Latitude:    *lat,
		Longitude:   *lon,
		Filename:    filepath.Base(*imagePath),
		Image:       file,
	})
	if err != nil {
		return c.authService.Check(ctx, err)
	}

	c.io.Println("✓ Entry created!")
	c.io.Println()
	printEntry(c.io, entry)
	return nil
}
