package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evcraddock/fsbo/internal/offer"
)

func newOfferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offer",
		Short: "Make and answer offers",
	}
	cmd.AddCommand(newOfferMakeCmd(), newOfferRespondCmd())
	return cmd
}

func newOfferMakeCmd() *cobra.Command {
	var msg string

	cmd := &cobra.Command{
		Use:   "make <property-id> <amount>",
		Short: "Offer an amount in dollars on a listing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "property")
			if err != nil {
				return err
			}
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || amount <= 0 {
				return fmt.Errorf("invalid amount: %s", args[1])
			}

			in := offer.NewOffer{PropertyID: id, Amount: amount}
			if msg != "" {
				in.Message = &msg
			}
			o, err := newAPIClient().SubmitOffer(in)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), o)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Offer #%d of $%s submitted (%s).\n", o.ID, formatPrice(o.Amount), o.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&msg, "message", "m", "", "note to the seller")

	return cmd
}

func newOfferRespondCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "respond <offer-id> <accepted|rejected>",
		Short:     "Accept or reject an offer on your listing",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(offer.StatusAccepted), string(offer.StatusRejected)},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "offer")
			if err != nil {
				return err
			}
			if _, err := offer.ParseResolution(args[1]); err != nil {
				return err
			}

			o, err := newAPIClient().SetOfferStatus(id, args[1])
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), o)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Offer #%d is now %s.\n", o.ID, o.Status)
			return nil
		},
	}
}
