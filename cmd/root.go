package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"lorebook/trellis/internal/store"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "trellis",
	Short: "Trellis universe hierarchy and watch-progress tracking",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .trellis.db database")
}

// DiscoverDB finds the database path using priority: env > flag > walk-up > XDG fallback
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("TRELLIS_DB"); envPath != "" {
		return envPath, nil
	}

	// 2. CLI flag
	if dbPath != "" {
		return dbPath, nil
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ".trellis.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. XDG fallback
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".local", "share", "trellis", "trellis.db")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("no .trellis.db found (set TRELLIS_DB, use --db, or run from a directory containing .trellis.db)")
}

// OpenStore discovers and opens the database
func OpenStore() (*store.Store, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

// ResolveNode finds a node by full ID, ID prefix, or title search.
func ResolveNode(ctx context.Context, st *store.Store, reference string) (*store.Node, error) {
	// 1. Exact ID match
	node, err := st.GetNode(ctx, reference)
	if err == nil && node != nil {
		return node, nil
	}

	// 2. ID prefix match (>=6 hex/dash chars)
	if len(reference) >= 6 && isHexDash(reference) {
		matches, err := st.SearchByIDPrefix(ctx, reference, 10)
		if err == nil {
			switch len(matches) {
			case 1:
				return &matches[0], nil
			case 0:
				// fall through to title search
			default:
				return nil, ambiguousErr(reference, matches)
			}
		}
	}

	// 3. Title search
	matches, err := st.SearchByTitle(ctx, reference, 10)
	if err == nil {
		switch len(matches) {
		case 1:
			return &matches[0], nil
		case 0:
			// fall through to not found
		default:
			return nil, ambiguousErr(reference, matches)
		}
	}

	return nil, fmt.Errorf("node not found: %s", reference)
}

func ambiguousErr(reference string, matches []store.Node) error {
	lines := make([]string, len(matches))
	for i, m := range matches {
		lines[i] = fmt.Sprintf("  %s %s", truncID(m.ID), m.Title)
	}
	return fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\nUse a full node ID instead.",
		reference, len(matches), strings.Join(lines, "\n"))
}

func isHexDash(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') || c == '-') {
			return false
		}
	}
	return true
}

func truncID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Find a safe UTF-8 boundary
	truncated := s[:max]
	for len(truncated) > 0 && truncated[len(truncated)-1]>>6 == 2 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "..."
}
