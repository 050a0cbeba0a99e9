package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"lorebook/trellis/internal/hierarchy"
)

var (
	reorderParent   string
	reorderUniverse string
)

var reorderCmd = &cobra.Command{
	Use:   "reorder <child> [child...]",
	Short: "Rewrite sibling order under one parent to match the given sequence",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := cmd.Context()

		var parentID *string
		universeID := reorderUniverse
		if reorderParent != "" {
			parent, err := ResolveNode(ctx, st, reorderParent)
			if err != nil {
				return err
			}
			parentID = &parent.ID
			universeID = parent.UniverseID
		}
		if universeID == "" {
			return fmt.Errorf("reordering roots requires --universe")
		}

		ids := make([]string, len(args))
		for i, ref := range args {
			node, err := ResolveNode(ctx, st, ref)
			if err != nil {
				return err
			}
			ids[i] = node.ID
		}

		engine := hierarchy.New(st)
		if err := engine.ReorderSiblings(ctx, universeID, parentID, ids); err != nil {
			return err
		}

		fmt.Printf("reordered %d siblings\n", len(ids))
		return nil
	},
}

func init() {
	reorderCmd.Flags().StringVar(&reorderParent, "parent", "", "Parent node; omitted reorders the root group")
	reorderCmd.Flags().StringVar(&reorderUniverse, "universe", "", "Universe ID (required when reordering roots)")
	rootCmd.AddCommand(reorderCmd)
}
