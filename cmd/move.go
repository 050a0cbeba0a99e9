package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"lorebook/trellis/internal/hierarchy"
)

var (
	moveParent string
	moveOrder  int
)

var moveCmd = &cobra.Command{
	Use:   "move <node>",
	Short: "Re-parent a node (omit --parent to make it a root)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		var parentID *string
		if moveParent != "" {
			parent, err := ResolveNode(ctx, st, moveParent)
			if err != nil {
				return err
			}
			parentID = &parent.ID
		}

		engine := hierarchy.New(st)
		_, err = engine.MoveNode(ctx, node.ID, parentID, node.UniverseID, moveOrder)
		if errors.Is(err, hierarchy.ErrCyclicEdge) {
			return fmt.Errorf("cannot move %s into its own descendant", node.Title)
		}
		if err != nil {
			return err
		}

		where := "to root"
		if parentID != nil {
			where = "under " + truncID(*parentID)
		}
		fmt.Printf("moved %s %s (order %d)\n", truncID(node.ID), where, moveOrder)
		return nil
	},
}

func init() {
	moveCmd.Flags().StringVar(&moveParent, "parent", "", "New parent node (ID, prefix, or title)")
	moveCmd.Flags().IntVar(&moveOrder, "order", 0, "Display order at the new position")
	rootCmd.AddCommand(moveCmd)
}
