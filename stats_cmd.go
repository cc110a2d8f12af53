// path: stats_cmd.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/database"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/stats"
)

var (
	statsStart  string
	statsEnd    string
	statsFormat string
)

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := database.Connect(ctx, cfg.Mongo, logger); err != nil {
		return fmt.Errorf("db connect failed: %w", err)
	}
	defer func() { _ = database.Disconnect(context.Background()) }()

	qctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	recs, err := database.Requests().All(qctx)
	if err != nil {
		return err
	}
	return writeStats(cmd.OutOrStdout(), recs, statsStart, statsEnd, statsFormat)
}

// writeStats prints the overall totals, or the week-over-week report when
// both dates are given. format is "json" (default) or "yaml".
func writeStats(w io.Writer, recs []models.Request, start, end, format string) error {
	var out any
	switch {
	case start == "" && end == "":
		out = stats.Aggregate(recs)
	case start == "" || end == "":
		return fmt.Errorf("both --start and --end are required for a dated report")
	default:
		from, ok := stats.ParseDate(start, time.UTC)
		if !ok {
			return fmt.Errorf("invalid --start %q (MM/DD/YYYY)", start)
		}
		to, ok := stats.ParseDate(end, time.UTC)
		if !ok {
			return fmt.Errorf("invalid --end %q (MM/DD/YYYY)", end)
		}
		out = stats.WeekOverWeek(recs, from, to)
	}

	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		// round-trip through JSON so YAML keys match the API field names
		raw, err := json.Marshal(out)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown --format %q (json or yaml)", format)
	}
}
