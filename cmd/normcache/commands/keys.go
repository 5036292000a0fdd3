package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/normcache/internal/app"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/ui/style"
)

func (c *CLI) newReachableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reachable",
		Short: "Print the keys reachable from the root record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := c.app.Reachable(cmd.Context(), options(cmd))
			if err != nil {
				return err
			}
			printKeys(cmd, keys)
			return nil
		},
	}
}

func (c *CLI) newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm KEY...",
		Short: "Remove records from the cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cascade, _ := cmd.Flags().GetBool("cascade")

			n, err := c.app.Remove(cmd.Context(), app.RemoveOptions{
				Options: options(cmd),
				Keys:    domain.Keys(args...),
				Cascade: cascade,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s removed %d records\n", style.Check, n)
			return nil
		},
	}
	cmd.Flags().Bool("cascade", false, "Also remove the records only the removed ones reference")
	return cmd
}

func (c *CLI) newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every record from the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Clear(cmd.Context(), options(cmd)); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), style.Check+" cache cleared")
			return nil
		},
	}
}

func (c *CLI) newGCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Remove the records unreachable from the root record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			expired, _ := cmd.Flags().GetBool("expired")

			res, err := c.app.GC(cmd.Context(), app.GCOptions{
				Options: options(cmd),
				Expired: expired,
			})
			if err != nil {
				return err
			}

			printKeys(cmd, res.Unreachable)
			out := cmd.OutOrStdout()
			if expired {
				_, _ = fmt.Fprintf(out, "%s removed %d expired records\n", style.Check, res.Expired)
			}
			_, _ = fmt.Fprintf(out, "%s removed %d unreachable records\n", style.Check, len(res.Unreachable))
			return nil
		},
	}
	cmd.Flags().Bool("expired", false, "Also remove records whose expiration date has passed")
	return cmd
}

func printKeys(cmd *cobra.Command, keys []domain.CacheKey) {
	out := cmd.OutOrStdout()
	for _, k := range keys {
		_, _ = fmt.Fprintln(out, string(k))
	}
}
