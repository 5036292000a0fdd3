package commands

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/ui/style"
	"go.trai.ch/zerr"
)

func (c *CLI) newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every record in the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := c.app.Dump(cmd.Context(), options(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, key := range slices.Sorted(maps.Keys(records)) {
				raw, err := json.Marshal(displayFields(records[key].Fields))
				if err != nil {
					return zerr.With(zerr.Wrap(err, "failed to encode record"), "key", string(key))
				}
				_, _ = fmt.Fprintf(out, "%s %s\n", style.Key(string(key)), raw)
			}
			return nil
		},
	}
}

// displayFields converts record fields to JSON-friendly values. References
// are shown as {"__ref": key}.
func displayFields(fields domain.Fields) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = displayValue(v)
	}
	return out
}

func displayValue(v any) any {
	switch val := v.(type) {
	case domain.CacheKey:
		return map[string]any{"__ref": string(val)}
	case domain.Object:
		return displayFields(domain.Fields(val))
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = displayValue(e)
		}
		return out
	default:
		return val
	}
}
