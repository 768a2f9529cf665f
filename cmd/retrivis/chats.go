package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/retry"
)

// newChatsCmd creates the chats subcommand tree.
func newChatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "Manage chats in a project",
	}

	listCmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List chats in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			var chats []models.Chat
			err = retry.Do(cmd.Context(), retry.DefaultConfig(), func(ctx context.Context) error {
				var err error
				chats, err = client.ListChats(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return printJSON(chats)
		},
	}

	var title string
	createCmd := &cobra.Command{
		Use:   "create <project-id>",
		Short: "Create a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if title == "" {
				title = fmt.Sprintf("Chat #%d", time.Now().UnixMilli()%10000)
			}
			chat, err := client.CreateChat(cmd.Context(), args[0], title)
			if err != nil {
				return err
			}
			return printJSON(chat)
		},
	}
	createCmd.Flags().StringVarP(&title, "title", "t", "", "Chat title (default: timestamp-derived)")

	deleteCmd := &cobra.Command{
		Use:   "delete <chat-id>",
		Short: "Delete a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if err := client.DeleteChat(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		},
	}

	cmd.AddCommand(listCmd, createCmd, deleteCmd)
	return cmd
}

// newChatCmd creates the chat subcommand for interacting with a single chat.
func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interact with a single chat",
	}

	showCmd := &cobra.Command{
		Use:   "show <chat-id>",
		Short: "Show a chat with its full message history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			var chat *models.ChatWithMessages
			err = retry.Do(cmd.Context(), retry.DefaultConfig(), func(ctx context.Context) error {
				var err error
				chat, err = client.GetChat(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return printJSON(chat)
		},
	}

	sendCmd := &cobra.Command{
		Use:   "send <project-id> <chat-id> <message>",
		Short: "Send a message and print the assistant reply",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			result, err := client.SendMessage(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Println(result.AIMessage.Content)
			return nil
		},
	}

	cmd.AddCommand(showCmd, sendCmd)
	return cmd
}

// newFeedbackCmd creates the feedback subcommand.
func newFeedbackCmd() *cobra.Command {
	var comment, category string
	cmd := &cobra.Command{
		Use:   "feedback <message-id> <like|dislike>",
		Short: "Rate an assistant message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating := args[1]
			if rating != models.RatingLike && rating != models.RatingDislike {
				return fmt.Errorf("rating must be %q or %q", models.RatingLike, models.RatingDislike)
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			fb := models.Feedback{
				MessageID: args[0],
				Rating:    rating,
				Comment:   comment,
				Category:  category,
			}
			if err := client.SubmitFeedback(cmd.Context(), fb); err != nil {
				return err
			}
			fmt.Println("feedback submitted")
			return nil
		},
	}
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "Optional free-form comment")
	cmd.Flags().StringVar(&category, "category", "", "Optional feedback category")
	return cmd
}
