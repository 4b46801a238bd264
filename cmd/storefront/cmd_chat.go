package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/internal/app"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to customer support",
}

// storefront chat history
var chatHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the support conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireLogin(a); err != nil {
				return err
			}
			if err := a.Chat.History(ctx); err != nil {
				return fmt.Errorf("%s", api.Message(err))
			}
			printChat(cmd.OutOrStdout(), a.Chat.Messages())
			return nil
		})
	},
}

// storefront chat send <message...>
var chatSendCmd = &cobra.Command{
	Use:   "send <message...>",
	Short: "Send a message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireLogin(a); err != nil {
				return err
			}
			before := len(a.Chat.Messages())
			if err := a.Chat.Send(ctx, strings.Join(args, " ")); err != nil {
				return fmt.Errorf("%s", api.Message(err))
			}
			printChat(cmd.OutOrStdout(), a.Chat.Messages()[before:])
			return nil
		})
	},
}

func printChat(w io.Writer, msgs []api.ChatMessage) {
	for _, m := range msgs {
		who := "support"
		if m.UserMessage {
			who = "you"
		}
		fmt.Fprintf(w, "%-8s %s\n", who+":", m.Message)
	}
}

func init() {
	chatCmd.AddCommand(chatHistoryCmd, chatSendCmd)
}
