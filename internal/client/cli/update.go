package cli

import (
	"context"
	"encoding/json"
	"flag"
	"strconv"

	"github.com/iudanet/geojournal/pkg/api"
)

func (c *Cli) runUpdate(ctx context.Context, args []string) error {
	fs := newFlagSet("update", c.io)
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description")
	lat := fs.String("lat", "", "new latitude")
	lon := fs.String("lon", "", "new longitude")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if len(set) == 0 {
		return usageError("update: nothing to change")
	}

	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	// сервер заменяет все поля, поэтому незаданные берем из текущей записи
	current, err := c.apiClient.GetEntry(ctx, id)
	if err != nil {
		return c.authService.Check(ctx, err)
	}

	req := api.UpdateEntryRequest{
		Title:       current.Title,
		Description: current.Description,
		Latitude:    json.Number(strconv.FormatFloat(current.Latitude, 'f', -1, 64)),
		Longitude:   json.Number(strconv.FormatFloat(current.Longitude, 'f', -1, 64)),
	}
	if set["title"] {
		req.Title = *title
	}
	if set["description"] {
		req.Description = *description
	}
	if set["lat"] {
		req.Latitude = json.Number(*lat)
	}
	if set["lon"] {
		req.Longitude = json.Number(*lon)
	}

	entry, err := c.apiClient.UpdateEntry(ctx, id, req)
	if err != nil {
		return c.authService.Check(ctx, err)
	}

	c.io.Println("✓ Entry updated!")
	c.io.Println()
	printEntry(c.io, entry)
	return nil
}
