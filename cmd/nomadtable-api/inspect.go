package main

import (
	"fmt"
	"strconv"

	"github.com/Potowai/nomad-nantes/internal/chat"
	"github.com/Potowai/nomad-nantes/internal/config"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newInspectCommand() *cobra.Command {
	var chatID string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the persisted chat log",
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			_, store, closeStore, err := openMessageStore(appConfig, zap.NewNop(), nil)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			if err := store.Initialize(ctx); err != nil {
				return err
			}
			history, err := store.Messages(ctx, chatID)
			if err != nil {
				return err
			}

			header := fmt.Sprintf("  ====== %s (%d messages) ======", chatID, len(history))
			fmt.Fprintln(cmd.OutOrStdout(), color.New(color.BgBlack, color.FgGreen).Render(header))

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"ID", "Time", "Sender", "Me", "Status", "Text"})
			table.SetAutoWrapText(false)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)
			table.SetCenterSeparator("")
			table.SetColumnSeparator("")
			table.SetRowSeparator("")
			table.SetHeaderLine(false)
			table.SetTablePadding("\t")
			for _, message := range history {
				table.Append([]string{
					message.ID,
					message.Timestamp,
					message.Sender,
					strconv.FormatBool(message.IsMe),
					string(message.Status),
					message.Text,
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&chatID, "chat", chat.DefaultChatID, "Chat identifier to print")
	return cmd
}
