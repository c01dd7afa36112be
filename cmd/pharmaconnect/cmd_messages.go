package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	messagesCmd = &cobra.Command{
		Use:   "messages",
		Short: "Conversations opened by confirmed shifts",
	}

	messagesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List conversations with their messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, client.Store.Snapshot().Conversations)
		},
	}

	messagesSendCmd = &cobra.Command{
		Use:   "send [conversation-id] [text]...",
		Short: "Send a message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Orchestrator.SendMessage(cmd.Context(), args[0], strings.Join(args[1:], " "))
			return printResult(cmd, client.Store.Snapshot().Conversations)
		},
	}

	messagesReadCmd = &cobra.Command{
		Use:   "read [conversation-id]",
		Short: "Mark a conversation as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Orchestrator.MarkConversationRead(cmd.Context(), args[0])
			return nil
		},
	}
)

func init() {
	messagesCmd.AddCommand(messagesListCmd, messagesSendCmd, messagesReadCmd)
}
