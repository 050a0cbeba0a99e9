package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"lorebook/trellis/internal/hierarchy"
)

var (
	progressUser string

	progressShowUniverse string
	progressShowUser     string
	progressShowJSON     bool
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Read and write per-user completion progress",
}

var progressSetCmd = &cobra.Command{
	Use:   "set <node> <0-100>",
	Short: "Set a user's stored progress on a viewable node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("progress must be an integer 0-100: %q", args[1])
		}

		st, err := OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := cmd.Context()

		node, err := ResolveNode(ctx, st, args[0])
		if err != nil {
			return err
		}

		engine := hierarchy.New(st)
		err = engine.SetUserProgress(ctx, progressUser, node.ID, value)
		if errors.Is(err, hierarchy.ErrNotViewable) {
			return fmt.Errorf("%s is organizational; its progress is derived from its children", node.Title)
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s: %d%% for %s\n", node.Title, hierarchy.Clamp(value), progressUser)
		return nil
	},
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a user's aggregated progress for every root of a universe",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := cmd.Context()

		engine := hierarchy.New(st)
		forest, err := engine.ForestWithProgress(ctx, progressShowUniverse, progressShowUser)
		if err != nil {
			return err
		}

		if progressShowJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(forest)
		}

		for _, root := range forest {
			fmt.Printf("%3d%%  [%s]  %s\n", root.Progress, progressBar(root.Progress, 20), truncTitle(root.Title, 50))
		}
		return nil
	},
}

func init() {
	progressSetCmd.Flags().StringVar(&progressUser, "user", "", "User ID")
	progressSetCmd.MarkFlagRequired("user")
	progressShowCmd.Flags().StringVar(&progressShowUniverse, "universe", "", "Universe ID")
	progressShowCmd.Flags().StringVar(&progressShowUser, "user", "", "User ID")
	progressShowCmd.MarkFlagRequired("universe")
	progressShowCmd.MarkFlagRequired("user")
	progressCmd.AddCommand(progressSetCmd)
	progressCmd.AddCommand(progressShowCmd)
	rootCmd.AddCommand(progressCmd)
}
