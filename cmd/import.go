package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"lorebook/trellis/internal/hierarchy"
	"lorebook/trellis/internal/store"
)

var importUniverseID string

// importNode is one entry of a YAML universe definition. Viewable entries are
// leaves; organizational entries nest further items.
type importNode struct {
	Title    string       `yaml:"title"`
	Viewable bool         `yaml:"viewable"`
	Owner    string       `yaml:"owner,omitempty"`
	Items    []importNode `yaml:"items,omitempty"`
}

// universeFile is the top-level YAML document for `trellis import`.
type universeFile struct {
	Roots []importNode `yaml:"roots"`
}

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Bulk-create a universe hierarchy from a YAML definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		def, err := parseUniverseFile(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}

		st, err := OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		engine := hierarchy.New(st)
		created, err := importForest(cmd.Context(), st, engine, importUniverseID, def)
		if err != nil {
			return err
		}

		fmt.Printf("imported %d nodes into universe %s\n", created, importUniverseID)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importUniverseID, "universe", "", "Universe ID to import into")
	importCmd.MarkFlagRequired("universe")
	rootCmd.AddCommand(importCmd)
}

// parseUniverseFile decodes and validates a YAML universe definition.
func parseUniverseFile(data []byte) (*universeFile, error) {
	var def universeFile
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	if len(def.Roots) == 0 {
		return nil, fmt.Errorf("definition has no roots")
	}
	var validate func(path string, n importNode) error
	validate = func(path string, n importNode) error {
		if n.Title == "" {
			return fmt.Errorf("entry under %q has no title", path)
		}
		if n.Viewable && len(n.Items) > 0 {
			return fmt.Errorf("%q is viewable but has nested items", n.Title)
		}
		for _, item := range n.Items {
			if err := validate(n.Title, item); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range def.Roots {
		if err := validate("roots", root); err != nil {
			return nil, err
		}
	}
	return &def, nil
}

// importForest creates the definition's nodes and edges depth-first, in
// definition order so display orders match the file.
func importForest(ctx context.Context, st *store.Store, engine *hierarchy.Engine, universeID string, def *universeFile) (int, error) {
	created := 0
	var build func(parentID *string, n importNode) error
	build = func(parentID *string, n importNode) error {
		node, err := st.CreateNode(ctx, n.Title, universeID, store.CreateNodeOpts{
			IsViewable: n.Viewable,
			OwnerID:    n.Owner,
		})
		if err != nil {
			return err
		}
		if _, err := engine.CreateEdge(ctx, parentID, node.ID, universeID, nil); err != nil {
			return fmt.Errorf("attaching %q: %w", n.Title, err)
		}
		created++
		for _, item := range n.Items {
			if err := build(&node.ID, item); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range def.Roots {
		if err := build(nil, root); err != nil {
			return created, err
		}
	}
	return created, nil
}
