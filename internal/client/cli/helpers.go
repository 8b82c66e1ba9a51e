package cli

import (
	"flag"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/geojournal/internal/client/iocli"
	"github.com/iudanet/geojournal/pkg/api"
)

// newFlagSet создает набор флагов подкоманды с выводом в io
func newFlagSet(name string, out iocli.IO) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// parseWithID allows the id before or after the flags: "update <id> -title X" and "update -title X <id>"
func parseWithID(fs *flag.FlagSet, args []string) (string, error) {
	var id string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		id, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", usageError("%s: %v", fs.Name(), err)
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		return "", usageError("missing entry ID. Usage: geojournal %s <id>", fs.Name())
	}
	return id, nil
}

func printEntry(out iocli.IO, e *api.Entry) {
	out.Printf("Title:       %s\n", e.Title)
	out.Printf("ID:          %s\n", e.ID)
	if e.Description != "" {
		out.Printf("Description: %s\n", e.Description)
	}
	out.Printf("Location:    %s\n", formatLocation(e.Latitude, e.Longitude))
	out.Printf("Image:       %s\n", e.ImageURL)
	out.Printf("Created:     %s\n", e.CreatedAt.Local().Format(time.DateTime))
	if !e.UpdatedAt.Equal(e.CreatedAt) {
		out.Printf("Updated:     %s\n", e.UpdatedAt.Local().Format(time.DateTime))
	}
}

// formatLocation печатает координаты как 46.50000, -120.25000
func formatLocation(lat, lon float64) string {
	return strings.Join([]string{formatCoord(lat), formatCoord(lon)}, ", ")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}
