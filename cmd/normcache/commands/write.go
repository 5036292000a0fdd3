package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/normcache/internal/app"
	"go.trai.ch/normcache/internal/core/domain"
)

func (c *CLI) newWriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write QUERY DATA",
		Short: "Write the JSON result of a query into the cache",
		Long: "Write normalizes the JSON result in DATA, shaped by the query file QUERY,\n" +
			"and merges it into the cache. The changed fields are printed one per line.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, _ := cmd.Flags().GetString("key")
			memoryOnly, _ := cmd.Flags().GetBool("memory-only")
			doNotStore, _ := cmd.Flags().GetBool("do-not-store")
			expiresIn, _ := cmd.Flags().GetDuration("expires-in")

			res, err := c.app.Write(cmd.Context(), app.WriteOptions{
				Options:    options(cmd),
				QueryPath:  args[0],
				DataPath:   args[1],
				Key:        domain.CacheKey(key),
				MemoryOnly: memoryOnly,
				DoNotStore: doNotStore,
				ExpiresIn:  expiresIn,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, k := range res.Changed.Sorted() {
				_, _ = fmt.Fprintln(out, k)
			}
			return nil
		},
	}
	cmd.Flags().StringP("key", "k", "", "Write under this record instead of the root record")
	cmd.Flags().Bool("memory-only", false, "Write only to the memory layer of a chained store")
	cmd.Flags().Bool("do-not-store", false, "Normalize and report changes without storing anything")
	cmd.Flags().Duration("expires-in", 0, "Expire the written fields after this duration")
	return cmd
}
