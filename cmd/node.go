package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"lorebook/trellis/internal/hierarchy"
	"lorebook/trellis/internal/store"
)

var (
	nodeAddUniverse string
	nodeAddViewable bool
	nodeAddOwner    string
	nodeAddParent   string
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Create and remove content nodes (the CRUD layer around the engine)",
}

var nodeAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a node, optionally attached under a parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := cmd.Context()

		node, err := st.CreateNode(ctx, args[0], nodeAddUniverse, store.CreateNodeOpts{
			IsViewable: nodeAddViewable,
			OwnerID:    nodeAddOwner,
		})
		if err != nil {
			return err
		}

		engine := hierarchy.New(st)
		var parentID *string
		if nodeAddParent != "" {
			parent, err := ResolveNode(ctx, st, nodeAddParent)
			if err != nil {
				return err
			}
			parentID = &parent.ID
		}
		if _, err := engine.CreateEdge(ctx, parentID, node.ID, nodeAddUniverse, nil); err != nil {
			return fmt.Errorf("attaching node: %w", err)
		}

		fmt.Printf("created %s %s\n", truncID(node.ID), node.Title)
		return nil
	},
}

var nodeRmCmd = &cobra.Command{
	Use:   "rm <node>",
	Short: "Delete a node, its edges, and its progress rows",
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

		// Engine cleanup runs before the row delete; the SQLite cascade is
		// only the fallback.
		engine := hierarchy.New(st)
		if err := engine.DeleteAllForNode(ctx, node.ID); err != nil {
			return err
		}
		if err := st.DeleteNode(ctx, node.ID); err != nil {
			return err
		}

		fmt.Printf("deleted %s %s\n", truncID(node.ID), node.Title)
		return nil
	},
}

func init() {
	nodeAddCmd.Flags().StringVar(&nodeAddUniverse, "universe", "", "Universe ID")
	nodeAddCmd.Flags().BoolVar(&nodeAddViewable, "viewable", false, "Mark the node as directly consumable content")
	nodeAddCmd.Flags().StringVar(&nodeAddOwner, "owner", "", "Owner user ID")
	nodeAddCmd.Flags().StringVar(&nodeAddParent, "parent", "", "Parent node (ID, prefix, or title); omitted makes a root")
	nodeAddCmd.MarkFlagRequired("universe")
	nodeCmd.AddCommand(nodeAddCmd)
	nodeCmd.AddCommand(nodeRmCmd)
	rootCmd.AddCommand(nodeCmd)
}
