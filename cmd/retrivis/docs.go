package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/notify"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/retry"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/session"
)

// newDocsCmd creates the docs subcommand tree.
func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage a project's knowledge base",
	}

	cmd.AddCommand(
		newDocsListCmd(),
		newDocsUploadCmd(),
		newDocsAddURLCmd(),
		newDocsDeleteCmd(),
		newDocsWatchCmd(),
		newDocsChunksCmd(),
	)
	return cmd
}

func newDocsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <project-id>",
		Short: "List documents in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			var docs []models.ProjectDocument
			err = retry.Do(cmd.Context(), retry.DefaultConfig(), func(ctx context.Context) error {
				var err error
				docs, err = client.ListDocuments(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return printJSON(docs)
		},
	}
}

func newDocsUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <project-id> <file>...",
		Short: "Upload files into a project's knowledge base",
		Long:  "Each file runs its own upload pipeline concurrently. Failures are reported per file and never abort the batch.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer sess.Close()

			files := make([]session.UploadFile, 0, len(args)-1)
			for _, path := range args[1:] {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				contentType := mime.TypeByExtension(filepath.Ext(path))
				if contentType == "" {
					contentType = "application/octet-stream"
				}
				files = append(files, session.UploadFile{
					Name:        filepath.Base(path),
					ContentType: contentType,
					Data:        data,
				})
			}

			result, err := sess.UploadFiles(cmd.Context(), files)
			if err != nil {
				return err
			}
			for _, doc := range result.Documents {
				fmt.Printf("uploaded %s (%s)\n", doc.Filename, doc.ID)
			}
			for _, f := range result.Failures {
				fmt.Fprintf(os.Stderr, "failed %s: %v\n", f.Name, f.Err)
			}
			if len(result.Failures) > 0 {
				return fmt.Errorf("%d of %d file(s) failed", len(result.Failures), len(files))
			}
			return nil
		},
	}
}

func newDocsAddURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-url <project-id> <url>",
		Short: "Add a URL to a project's knowledge base",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			doc, err := client.AddURLDocument(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(doc)
		},
	}
}

func newDocsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id> <document-id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if err := client.DeleteDocument(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		},
	}
}

func newDocsWatchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch <project-id>",
		Short: "Poll document processing until every document is terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			prev := map[string]string{}
			for {
				docs, err := client.ListDocuments(ctx, args[0])
				if err != nil {
					fmt.Fprintf(os.Stderr, "poll failed: %v\n", err)
				} else {
					active := false
					for _, doc := range docs {
						if from, ok := prev[doc.ID]; ok && from != doc.ProcessingStatus && doc.IsTerminal() {
							fmt.Printf("%s: %s -> %s\n", doc.Filename, from, doc.ProcessingStatus)
						}
						prev[doc.ID] = doc.ProcessingStatus
						if !doc.IsTerminal() {
							active = true
						}
					}
					if !active {
						fmt.Println("all documents terminal")
						return nil
					}
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(interval):
				}
			}
		},
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().DurationVarP(&interval, "interval", "i", session.DefaultPollInterval, "Polling interval")
	return cmd
}

func newDocsChunksCmd() *cobra.Command {
	var typeFilter, query string
	cmd := &cobra.Command{
		Use:   "chunks <project-id> <document-id>",
		Short: "List a processed document's chunks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			var chunks []models.Chunk
			err = retry.Do(cmd.Context(), retry.DefaultConfig(), func(ctx context.Context) error {
				var err error
				chunks, err = client.ListChunks(ctx, args[0], args[1])
				return err
			})
			if err != nil {
				return err
			}
			return printJSON(models.FilterChunks(chunks, typeFilter, query))
		},
	}
	cmd.Flags().StringVar(&typeFilter, "type", "", "Keep only chunks carrying this type")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Keep only chunks whose text contains this string")
	return cmd
}

// openSession loads a full project session for commands that need the
// stateful layer rather than bare API calls.
func openSession(ctx context.Context, projectID string) (*session.ProjectSession, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	sess := session.NewProjectSession(projectID, client, notify.NewLogNotifier(logger), logger)
	if err := sess.Load(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}
