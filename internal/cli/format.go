package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/evcraddock/fsbo/internal/notify"
	"github.com/evcraddock/fsbo/internal/property"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable renders rows under headers with aligned columns.
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	line := func(cells []string) error {
		for i, c := range cells {
			sep := "\t"
			if i == len(cells)-1 {
				sep = "\n"
			}
			if _, err := io.WriteString(tw, c+sep); err != nil {
				return err
			}
		}
		return nil
	}

	if err := line(headers); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, r := range rows {
		if err := line(r); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printPropertySummary prints one listing as aligned label/value lines.
func printPropertySummary(w io.Writer, p *property.Property) error {
	fields := [][2]string{
		{"Address", fmt.Sprintf("%s, %s, %s %s", p.Address, p.City, p.State, p.ZipCode)},
		{"Price", "$" + formatPrice(p.Price)},
		{"Beds", strconv.Itoa(p.Bedrooms)},
		{"Baths", strconv.FormatFloat(p.Bathrooms, 'g', -1, 64)},
		{"Sqft", strconv.Itoa(p.SquareFeet)},
	}
	if p.LotSize != nil {
		fields = append(fields, [2]string{"Lot", fmt.Sprintf("%.2f acres", *p.LotSize)})
	}
	if p.YearBuilt != nil {
		fields = append(fields, [2]string{"Built", strconv.Itoa(*p.YearBuilt)})
	}
	fields = append(fields,
		[2]string{"Type", p.PropertyType},
		[2]string{"Status", string(p.Status)},
	)
	if p.IsPremium {
		fields = append(fields, [2]string{"Premium", formatPremium(p)})
	}
	fields = append(fields, [2]string{"Views", strconv.FormatInt(p.ViewCount, 10)})

	if _, err := fmt.Fprintf(w, "Property #%d: %s\n", p.ID, p.Title); err != nil {
		return err
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "  %-9s %s\n", f[0]+":", f[1]); err != nil {
			return err
		}
	}
	return nil
}

func formatPremium(p *property.Property) string {
	if p.PremiumUntil == nil {
		return "yes"
	}
	return "until " + p.PremiumUntil.Format("2006-01-02")
}

// printPropertyTable prints listings one per row, premium ones starred.
func printPropertyTable(w io.Writer, props []*property.Property) error {
	if len(props) == 0 {
		_, err := fmt.Fprintln(w, "No properties found.")
		return err
	}

	rows := make([][]string, 0, len(props))
	for _, p := range props {
		star := ""
		if p.IsPremium {
			star = "★"
		}
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			truncate(p.Title, 40),
			p.City,
			"$" + formatPrice(p.Price),
			strconv.Itoa(p.Bedrooms),
			strconv.FormatFloat(p.Bathrooms, 'g', -1, 64),
			strconv.Itoa(p.SquareFeet),
			string(p.Status),
			star,
		})
	}
	if err := writeTable(w, []string{"ID", "TITLE", "CITY", "PRICE", "BED", "BATH", "SQFT", "STATUS", ""}, rows); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d properties\n", len(props))
	return err
}

// formatPrice renders whole dollars with thousands separators.
func formatPrice(dollars int64) string {
	return notify.FormatWithCommas(dollars)
}

// formatCents renders an amount in cents as dollars, e.g. 99900 -> "999.00".
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%s.%02d", sign, formatPrice(cents/100), cents%100)
}

// truncate shortens s to at most maxLen runes, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}
