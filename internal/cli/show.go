package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/fsbo/internal/user"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show listing details",
		Long:  "Show full details for a listing, including its features and photos. Each call counts as a view.",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "property")
	if err != nil {
		return err
	}

	d, err := newAPIClient().GetProperty(id)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), d)
	}

	out := cmd.OutOrStdout()
	if err := printPropertySummary(out, d.Property); err != nil {
		return err
	}
	if d.Owner != nil {
		fmt.Fprintf(out, "  %-9s %s\n", "Seller:", sellerName(d.Owner))
	}
	fmt.Fprintln(out)
	if len(d.Features) > 0 {
		fmt.Fprintf(out, "Features (%d):\n", len(d.Features))
		for _, f := range d.Features {
			fmt.Fprintf(out, "  - %s\n", f.Feature)
		}
	}
	if len(d.Images) > 0 {
		fmt.Fprintf(out, "Photos (%d):\n", len(d.Images))
		for _, img := range d.Images {
			if img.Caption != nil && *img.Caption != "" {
				fmt.Fprintf(out, "  %s  (%s)\n", img.ImageURL, *img.Caption)
				continue
			}
			fmt.Fprintf(out, "  %s\n", img.ImageURL)
		}
	}

	return nil
}

// sellerName shows the owner's name when they have set one.
func sellerName(p *user.PublicProfile) string {
	var first, last string
	if p.FirstName != nil {
		first = *p.FirstName
	}
	if p.LastName != nil {
		last = *p.LastName
	}
	if name := strings.TrimSpace(first + " " + last); name != "" {
		return name + " (" + p.ID + ")"
	}
	return p.ID
}

// parseID parses a positive numeric ID argument.
func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", what, s)
	}
	return id, nil
}
