package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/fsbo/internal/user"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Marketplace back office (admin only)",
	}
	cmd.AddCommand(newAdminStatsCmd(), newAdminSetRoleCmd())
	return cmd
}

func newAdminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show marketplace totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newAPIClient().AdminStats()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), s)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listings:      %d (%d premium, %.1f%%)\n", s.TotalProperties, s.PremiumProperties, s.PremiumPercentage)
			fmt.Fprintf(cmd.OutOrStdout(), "Users:         %d (%d sellers, %d buyers, %d admins)\n", s.TotalUsers, s.SellerUsers, s.BuyerUsers, s.AdminUsers)
			fmt.Fprintf(cmd.OutOrStdout(), "Revenue:       $%s from %d upgrades\n", formatCents(s.TotalRevenue), s.TransactionsCount)
			fmt.Fprintf(cmd.OutOrStdout(), "Offers:        %d\n", s.OffersCount)
			fmt.Fprintf(cmd.OutOrStdout(), "Messages:      %d\n", s.MessagesCount)
			return nil
		},
	}
}

func newAdminSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set-role <user-id> <buyer|seller|admin>",
		Short:     "Change a user's role",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(user.RoleBuyer), string(user.RoleSeller), string(user.RoleAdmin)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := user.ParseRole(args[1]); err != nil {
				return err
			}
			u, err := newAPIClient().AdminSetRole(args[0], args[1])
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), u)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s.\n", u.ID, u.Role)
			return nil
		},
	}
}
