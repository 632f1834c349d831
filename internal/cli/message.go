package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/fsbo/internal/message"
)

func newMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Send and read messages",
	}
	cmd.AddCommand(newMessageSendCmd(), newMessageListCmd())
	return cmd
}

func newMessageSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <property-id> <to-user-id> <text...>",
		Short: "Message a user about a listing",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "property")
			if err != nil {
				return err
			}
			m, err := newAPIClient().SendMessage(message.NewMessage{
				PropertyID: id,
				ToUserID:   args[1],
				Message:    strings.Join(args[2:], " "),
			})
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), m)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Message #%d sent.\n", m.ID)
			return nil
		},
	}
}

func newMessageListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List messages you sent or received",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := newAPIClient().Messages()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), msgs)
			}
			return printMessages(cmd.OutOrStdout(), msgs)
		},
	}
}

func printMessages(w io.Writer, msgs []*message.Message) error {
	if len(msgs) == 0 {
		_, err := fmt.Fprintln(w, "No messages.")
		return err
	}

	rows := make([][]string, 0, len(msgs))
	for _, m := range msgs {
		read := "no"
		if m.IsRead {
			read = "yes"
		}
		rows = append(rows, []string{
			strconv.FormatInt(m.ID, 10),
			strconv.FormatInt(m.PropertyID, 10),
			m.FromUserID,
			m.ToUserID,
			read,
			truncate(m.Message, 50),
		})
	}
	return writeTable(w, []string{"ID", "PROPERTY", "FROM", "TO", "READ", "MESSAGE"}, rows)
}
