package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Converse with an uploaded document",
	Long:  `Ask questions about a document, browse past answers, or clear a conversation.`,
}

var chatAskCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Ask a question about a document",
	Args:  cobra.ExactArgs(2),
	RunE:  runChatAsk,
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history [doc-id]",
	Short: "Show the conversation for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatHistory,
}

var chatDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id] [message-id]",
	Short: "Delete a message from a conversation",
	Args:  cobra.ExactArgs(2),
	RunE:  runChatDelete,
}

var chatClearCmd = &cobra.Command{
	Use:   "clear [doc-id]",
	Short: "Delete the whole conversation for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatClear,
}

var chatSearchCmd = &cobra.Command{
	Use:   "search [doc-id] [query]",
	Short: "Find passages similar to a query",
	Args:  cobra.ExactArgs(2),
	RunE:  runChatSearch,
}

// chatSearchLimit caps the similarity search result count.
var chatSearchLimit int

func init() {
	chatSearchCmd.Flags().IntVarP(&chatSearchLimit, "limit", "n", 5, "maximum number of passages")

	chatCmd.AddCommand(chatAskCmd)
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatDeleteCmd)
	chatCmd.AddCommand(chatClearCmd)
	chatCmd.AddCommand(chatSearchCmd)
	rootCmd.AddCommand(chatCmd)
}

func runChatAsk(cmd *cobra.Command, args []string) error {
	if newConversation == nil {
		return errors.New("conversation service not configured")
	}

	docID, question := args[0], args[1]
	ctx := context.Background()

	conv := newConversation(docID)
	if err := conv.Send(ctx, question); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	msgs := conv.Messages()
	if len(msgs) == 0 {
		cmd.Println("Nothing to ask: the question was empty or the document id is invalid.")
		return nil
	}

	printMessage(cmd, msgs[len(msgs)-1])
	return nil
}

func runChatHistory(cmd *cobra.Command, args []string) error {
	if newConversation == nil {
		return errors.New("conversation service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	conv := newConversation(docID)
	if err := conv.LoadHistory(ctx); err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	msgs := conv.Messages()
	if len(msgs) == 0 {
		cmd.Printf("No conversation for document %s yet.\n", docID)
		return nil
	}

	cmd.Printf("Conversation for document %s:\n\n", docID)
	for i := range msgs {
		printMessage(cmd, msgs[i])
	}
	cmd.Printf("Total: %d messages\n", len(msgs))
	return nil
}

func runChatDelete(cmd *cobra.Command, args []string) error {
	if newConversation == nil {
		return errors.New("conversation service not configured")
	}

	docID, messageID := args[0], args[1]
	ctx := context.Background()

	conv := newConversation(docID)
	if err := conv.DeleteMessage(ctx, messageID); err != nil {
		if errors.Is(err, domain.ErrPendingMessage) {
			return fmt.Errorf("message %s is still being sent and cannot be deleted", messageID)
		}
		return fmt.Errorf("failed to delete message: %w", err)
	}

	cmd.Printf("Message %s deleted.\n", messageID)
	return nil
}

func runChatClear(cmd *cobra.Command, args []string) error {
	if newConversation == nil {
		return errors.New("conversation service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	conv := newConversation(docID)
	if err := conv.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}

	cmd.Printf("Conversation for document %s cleared.\n", docID)
	return nil
}

func runChatSearch(cmd *cobra.Command, args []string) error {
	if newConversation == nil {
		return errors.New("conversation service not configured")
	}

	docID, query := args[0], args[1]
	ctx := context.Background()

	conv := newConversation(docID)
	snippets := conv.SearchSimilar(ctx, query, chatSearchLimit)
	if len(snippets) == 0 {
		cmd.Println("No similar passages found.")
		return nil
	}

	cmd.Println("Similar passages:")
	cmd.Println()
	for i := range snippets {
		cmd.Printf("  [%d] page %d (%.2f)\n", i+1, snippets[i].Page, snippets[i].Score)
		cmd.Printf("      %s\n", snippets[i].Content)
		cmd.Println()
	}
	return nil
}

func printMessage(cmd *cobra.Command, m domain.Message) {
	role := "You"
	if m.Role == domain.RoleAssistant {
		role = "Assistant"
	}
	cmd.Printf("[%s] %s\n", role, m.Content)
	if len(m.Citations) > 0 {
		pages := make([]string, len(m.Citations))
		for i, c := range m.Citations {
			pages[i] = fmt.Sprintf("%d", c.Page)
		}
		cmd.Printf("    Pages: %s\n", strings.Join(pages, ", "))
	}
	if m.SearchMethod != "" {
		cmd.Printf("    Method: %s\n", m.SearchMethod)
	}
	cmd.Println()
}
