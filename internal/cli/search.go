package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/fsbo/internal/client"
)

func newSearchCmd() *cobra.Command {
	var (
		opts                        client.SearchOptions
		minPrice, maxPrice, minBeds int
		minBaths                    float64
	)

	cmd := &cobra.Command{
		Use:   "search [location]",
		Short: "Search listings",
		Long:  "Search listings by location, price range, bedrooms, bathrooms, type, and status. Premium listings are shown first.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Location = args[0]
			}
			flags := cmd.Flags()
			if flags.Changed("min-price") {
				v := int64(minPrice)
				opts.MinPrice = &v
			}
			if flags.Changed("max-price") {
				v := int64(maxPrice)
				opts.MaxPrice = &v
			}
			if flags.Changed("min-beds") {
				opts.MinBeds = &minBeds
			}
			if flags.Changed("min-baths") {
				opts.MinBaths = &minBaths
			}

			props, err := newAPIClient().Search(opts)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), props)
			}
			return printPropertyTable(cmd.OutOrStdout(), props)
		},
	}

	f := cmd.Flags()
	f.IntVar(&minPrice, "min-price", 0, "minimum price in dollars")
	f.IntVar(&maxPrice, "max-price", 0, "maximum price in dollars")
	f.IntVar(&minBeds, "min-beds", 0, "minimum bedrooms")
	f.Float64Var(&minBaths, "min-baths", 0, "minimum bathrooms")
	f.StringVar(&opts.PropertyType, "type", "", "property type, e.g. House or Condo")
	f.StringVar(&opts.Status, "status", "", "listing status (active|pending|sold|inactive)")
	f.BoolVar(&opts.PremiumOnly, "premium", false, "only premium listings")
	f.IntVar(&opts.Limit, "limit", 0, "maximum results (default 50)")

	return cmd
}

func newFeaturedCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "featured",
		Short: "List featured premium listings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := newAPIClient().Featured(limit)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), props)
			}
			return printPropertyTable(cmd.OutOrStdout(), props)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (default 6)")

	return cmd
}
