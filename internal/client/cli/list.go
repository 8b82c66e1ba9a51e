package cli

import (
	"context"

	"github.com/iudanet/geojournal/internal/client/api"
)

func (c *Cli) runList(ctx context.Context, args []string) error {
	fs := newFlagSet("list", c.io)
	var opts api.ListOptions
	fs.IntVar(&opts.Page, "page", 0, "page number, starting at 1")
	fs.IntVar(&opts.Limit, "limit", 0, "entries per page")
	fs.StringVar(&opts.StartDate, "from", "", "start date, YYYY-MM-DD or RFC3339")
	fs.StringVar(&opts.EndDate, "to", "", "end date, YYYY-MM-DD or RFC3339")
	if err := fs.Parse(args); err != nil {
		return usageError("list: %v", err)
	}
	if (opts.StartDate == "") != (opts.EndDate == "") {
		return usageError("list: -from and -to must be given together")
	}

	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	list, err := c.apiClient.ListEntries(ctx, opts)
	if err != nil {
		return c.authService.Check(ctx, err)
	}

	c.io.Println("=== Journal ===")
	c.io.Println()

	if len(list.Entries) == 0 {
		c.io.Println("No entries found.")
		c.io.Println("Use 'geojournal add -image PATH' to add your first entry.")
		return nil
	}

	for i, e := range list.Entries {
		c.io.Printf("%d. %s\n", i+1, e.Title)
		c.io.Printf("   ID:       %s\n", e.ID)
		c.io.Printf("   Location: %s\n", formatLocation(e.Latitude, e.Longitude))
		c.io.Printf("   Created:  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	p := list.Pagination
	c.io.Println()
	c.io.Printf("Page %d of %d, %d entries total\n", p.CurrentPage, p.TotalPages, p.TotalEntries)
	return nil
}
