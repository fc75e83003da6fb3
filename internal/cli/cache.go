package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local build cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand. It reports per
// namespace so the user can see whether graphs or artifacts dominated.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached graphs and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			removed, err := clearCacheDir(dir)
			if err != nil {
				return err
			}

			total := 0
			for _, ns := range removed {
				total += ns.count
			}
			if total == 0 {
				printInfo("Cache is empty")
				return nil
			}

			printSuccess("Cleared %d cached entries", total)
			for _, ns := range removed {
				if ns.count > 0 {
					printDetail("%s: %d", ns.name, ns.count)
				}
			}
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// namespaceCount pairs a cache namespace ("graph", "artifact") with how many
// entries it held.
type namespaceCount struct {
	name  string
	count int
}

// clearCacheDir removes every namespace subtree under dir and returns the
// per-namespace entry counts. The root directory itself is kept so the next
// build can reuse it without re-resolving permissions.
func clearCacheDir(dir string) ([]namespaceCount, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var removed []namespaceCount
	for _, e := range entries {
		sub := filepath.Join(dir, e.Name())
		if !e.IsDir() {
			if err := os.Remove(sub); err != nil {
				return removed, err
			}
			continue
		}
		n, err := countCacheEntries(sub)
		if err != nil {
			return removed, err
		}
		if err := os.RemoveAll(sub); err != nil {
			return removed, err
		}
		removed = append(removed, namespaceCount{name: e.Name(), count: n})
	}
	return removed, nil
}

// countCacheEntries counts the files in a namespace subtree.
func countCacheEntries(dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	return n, err
}
