package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"lorebook/trellis/internal/hierarchy"
)

var (
	treeUniverse string
	treeUser     string
	treeJSON     bool
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the forest of a universe, with per-user progress overlay",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		engine := hierarchy.New(st)
		ctx := cmd.Context()

		var forest []*hierarchy.TreeNode
		if treeUser != "" {
			forest, err = engine.ForestWithProgress(ctx, treeUniverse, treeUser)
		} else {
			forest, err = engine.Forest(ctx, treeUniverse)
		}
		if err != nil {
			return fmt.Errorf("building forest: %w", err)
		}

		if treeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(forest)
		}

		if len(forest) == 0 {
			fmt.Printf("universe %s is empty\n", treeUniverse)
			return nil
		}
		for _, root := range forest {
			printTree(root, 0)
		}
		return nil
	},
}

func init() {
	treeCmd.Flags().StringVar(&treeUniverse, "universe", "", "Universe ID")
	treeCmd.Flags().StringVar(&treeUser, "user", "", "Overlay this user's progress")
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "Output as JSON")
	treeCmd.MarkFlagRequired("universe")
	rootCmd.AddCommand(treeCmd)
}

func printTree(t *hierarchy.TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	marker := "+"
	if t.IsViewable {
		marker = "-"
	}
	line := fmt.Sprintf("%s%s %s %s", indent, marker, truncID(t.ID), truncTitle(t.Title, 60))
	if treeUser != "" {
		line += fmt.Sprintf("  %3d%%  [%s]", t.Progress, progressBar(t.Progress, 10))
	}
	fmt.Println(line)
	for _, child := range t.Children {
		printTree(child, depth+1)
	}
}

func progressBar(percent, width int) string {
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
