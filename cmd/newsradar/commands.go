package main

import (
	"context"
	"errors"

	"newsradar/app"
	"newsradar/pipeline"

	"github.com/spf13/cobra"
)

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion pass and print the run result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Pipeline.Process(ctx)
				if result != nil {
					if perr := printJSON(cmd.OutOrStdout(), result); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}
}

func recommendCmd() *cobra.Command {
	var query, articleID string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Find similar articles for a query or an indexed article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" && articleID == "" {
				return errors.New("one of --query or --article-id is required")
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				rec, err := a.Pipeline.Recommend(ctx, pipeline.RecommendRequest{ArticleID: articleID, Query: query})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rec)
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "free-text query")
	cmd.Flags().StringVar(&articleID, "article-id", "", "id of an indexed article to use as the seed")
	return cmd
}

func articleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "article <id>",
		Short: "Show a stored article with its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				detail, err := a.Pipeline.GetArticle(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), detail)
			})
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an article from the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Pipeline.DeleteArticle(ctx, args[0]); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]string{"status": "deleted", "article_id": args[0]})
			})
		},
	}
}
