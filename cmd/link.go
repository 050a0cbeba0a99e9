package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"lorebook/trellis/internal/hierarchy"
)

var (
	linkParent string
	linkOrder  int

	unlinkParent string
)

var linkCmd = &cobra.Command{
	Use:   "link <child>",
	Short: "Attach a node under a parent (or as a root when --parent is omitted)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := cmd.Context()

		child, err := ResolveNode(ctx, st, args[0])
		if err != nil {
			return err
		}
		var parentID *string
		if linkParent != "" {
			parent, err := ResolveNode(ctx, st, linkParent)
			if err != nil {
				return err
			}
			parentID = &parent.ID
		}
		var order *int
		if cmd.Flags().Changed("order") {
			order = &linkOrder
		}

		engine := hierarchy.New(st)
		edge, err := engine.CreateEdge(ctx, parentID, child.ID, child.UniverseID, order)
		if err != nil {
			return err
		}

		where := "as root"
		if parentID != nil {
			where = "under " + truncID(*parentID)
		}
		fmt.Printf("linked %s %s (order %d)\n", truncID(child.ID), where, edge.DisplayOrder)
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink <child>",
	Short: "Detach a node from a parent (or remove its root edge)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := cmd.Context()

		child, err := ResolveNode(ctx, st, args[0])
		if err != nil {
			return err
		}
		var parentID *string
		if unlinkParent != "" {
			parent, err := ResolveNode(ctx, st, unlinkParent)
			if err != nil {
				return err
			}
			parentID = &parent.ID
		}

		engine := hierarchy.New(st)
		if err := engine.DeleteEdge(ctx, child.UniverseID, parentID, child.ID); err != nil {
			return err
		}

		fmt.Printf("unlinked %s\n", truncID(child.ID))
		return nil
	},
}

func init() {
	linkCmd.Flags().StringVar(&linkParent, "parent", "", "Parent node (ID, prefix, or title)")
	linkCmd.Flags().IntVar(&linkOrder, "order", 0, "Display order; appended after the last sibling when omitted")
	unlinkCmd.Flags().StringVar(&unlinkParent, "parent", "", "Parent node; omitted targets the root edge")
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
}
