package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/retry"
)

// newSettingsCmd creates the settings subcommand tree.
func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and edit a project's retrieval settings",
	}
	cmd.AddCommand(newSettingsGetCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <project-id>",
		Short: "Show a project's settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			var settings *models.ProjectSettings
			err = retry.Do(cmd.Context(), retry.DefaultConfig(), func(ctx context.Context) error {
				var err error
				settings, err = client.GetSettings(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return printJSON(settings)
		},
	}
}

// settingsFlags binds each optional flag to a patch field only when the
// user actually set it, so unset flags stay out of the merge.
type settingsFlags struct {
	embeddingModel      string
	ragStrategy         string
	agentType           string
	chunksPerSearch     int
	finalContextSize    int
	similarityThreshold float64
	numberOfQueries     int
	rerankingEnabled    bool
	rerankingModel      string
	vectorWeight        float64
	keywordWeight       float64
}

func (f *settingsFlags) patch(cmd *cobra.Command) models.SettingsPatch {
	var p models.SettingsPatch
	if cmd.Flags().Changed("embedding-model") {
		p.EmbeddingModel = &f.embeddingModel
	}
	if cmd.Flags().Changed("rag-strategy") {
		p.RAGStrategy = &f.ragStrategy
	}
	if cmd.Flags().Changed("agent-type") {
		p.AgentType = &f.agentType
	}
	if cmd.Flags().Changed("chunks-per-search") {
		p.ChunksPerSearch = &f.chunksPerSearch
	}
	if cmd.Flags().Changed("final-context-size") {
		p.FinalContextSize = &f.finalContextSize
	}
	if cmd.Flags().Changed("similarity-threshold") {
		p.SimilarityThreshold = &f.similarityThreshold
	}
	if cmd.Flags().Changed("number-of-queries") {
		p.NumberOfQueries = &f.numberOfQueries
	}
	if cmd.Flags().Changed("reranking") {
		p.RerankingEnabled = &f.rerankingEnabled
	}
	if cmd.Flags().Changed("reranking-model") {
		p.RerankingModel = &f.rerankingModel
	}
	if cmd.Flags().Changed("vector-weight") {
		p.VectorWeight = &f.vectorWeight
	}
	if cmd.Flags().Changed("keyword-weight") {
		p.KeywordWeight = &f.keywordWeight
	}
	return p
}

func newSettingsSetCmd() *cobra.Command {
	var flags settingsFlags
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "set <project-id>",
		Short: "Merge settings changes and publish them",
		Long:  "Fetches the current settings, merges the given flags over them, and replaces the settings wholesale on the backend.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var current *models.ProjectSettings
			err = retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
				var err error
				current, err = client.GetSettings(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}

			patch := flags.patch(cmd)
			merged := patch.Apply(*current)
			if dryRun {
				return printJSON(merged)
			}

			published, err := client.ReplaceSettings(ctx, args[0], merged)
			if err != nil {
				return err
			}
			return printJSON(published)
		},
	}

	cmd.Flags().StringVar(&flags.embeddingModel, "embedding-model", "", "Embedding model")
	cmd.Flags().StringVar(&flags.ragStrategy, "rag-strategy", "", "RAG strategy")
	cmd.Flags().StringVar(&flags.agentType, "agent-type", "", "Agent type")
	cmd.Flags().IntVar(&flags.chunksPerSearch, "chunks-per-search", 0, "Chunks fetched per search")
	cmd.Flags().IntVar(&flags.finalContextSize, "final-context-size", 0, "Chunks kept in the final context")
	cmd.Flags().Float64Var(&flags.similarityThreshold, "similarity-threshold", 0, "Similarity cutoff")
	cmd.Flags().IntVar(&flags.numberOfQueries, "number-of-queries", 0, "Queries generated per question")
	cmd.Flags().BoolVar(&flags.rerankingEnabled, "reranking", false, "Enable reranking")
	cmd.Flags().StringVar(&flags.rerankingModel, "reranking-model", "", "Reranking model")
	cmd.Flags().Float64Var(&flags.vectorWeight, "vector-weight", 0, "Vector search weight")
	cmd.Flags().Float64Var(&flags.keywordWeight, "keyword-weight", 0, "Keyword search weight")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the merged settings without publishing")

	return cmd
}
