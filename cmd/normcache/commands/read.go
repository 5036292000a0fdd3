package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/normcache/internal/app"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/ui/style"
	"go.trai.ch/zerr"
)

func (c *CLI) newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read QUERY",
		Short: "Read the result of a query from the cache",
		Long: "Read rebuilds the result of the query file QUERY from the cache and prints\n" +
			"it as JSON. Fields that could not be read are null and reported on stderr.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, _ := cmd.Flags().GetString("key")
			maxStale, _ := cmd.Flags().GetDuration("max-stale")
			evict, _ := cmd.Flags().GetBool("evict-after-read")
			memoryOnly, _ := cmd.Flags().GetBool("memory-only")
			strict, _ := cmd.Flags().GetBool("strict")

			res, err := c.app.Read(cmd.Context(), app.ReadOptions{
				Options:        options(cmd),
				QueryPath:      args[0],
				Key:            domain.CacheKey(key),
				MaxStale:       maxStale,
				EvictAfterRead: evict,
				MemoryOnly:     memoryOnly,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res.Data); err != nil {
				return zerr.Wrap(err, "failed to encode result")
			}

			errOut := cmd.ErrOrStderr()
			if res.Headers.Flag(domain.HeaderStale) {
				_, _ = fmt.Fprintln(errOut, style.Warning+" result contains stale fields")
			}
			for _, miss := range res.Misses {
				_, _ = fmt.Fprintln(errOut, style.Warning+" "+miss.Error())
			}
			if strict {
				return res.Err()
			}
			return nil
		},
	}
	cmd.Flags().StringP("key", "k", "", "Read from this record instead of the root record")
	cmd.Flags().Duration("max-stale", 0, "Accept fields this long past their max age or expiration")
	cmd.Flags().Bool("evict-after-read", false, "Evict the records read from the memory layer")
	cmd.Flags().Bool("memory-only", false, "Read only from the memory layer of a chained store")
	cmd.Flags().Bool("strict", false, "Fail when any field could not be read")
	return cmd
}
