package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/siteproof-backend/internal/app"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Maintain the Neo4j projection",
}

var graphResyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Re-project a project's assets and edges into Neo4j",
	Long: `Replays every live asset and edge of one project into the graph.
Writes are MERGE-based, so an interrupted resync can simply be rerun.`,
	RunE: runGraphResync,
}

var resyncProjectID string

func init() {
	graphResyncCmd.Flags().StringVar(&resyncProjectID, "project", "", "project id to resync (required)")
	_ = graphResyncCmd.MarkFlagRequired("project")
	graphCmd.AddCommand(graphResyncCmd)
}

func runGraphResync(cmd *cobra.Command, _ []string) error {
	projectID := strings.TrimSpace(resyncProjectID)
	if projectID == "" {
		return errors.New("--project is required")
	}
	ctx, stop := signalContext(cmd)
	defer stop()

	a, err := app.New(ctx, app.Options{SkipMigrate: true})
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	res, err := a.Services.Graph.Resync(ctx, projectID)
	if err != nil {
		return fmt.Errorf("resync %s: %w", projectID, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "project %s: %d assets, %d edges projected\n", projectID, res.Assets, res.Edges)
	return nil
}
