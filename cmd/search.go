package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gurisko/jbsearch/internal/catalog"
	"github.com/gurisko/jbsearch/internal/discovery"
	"github.com/gurisko/jbsearch/internal/match"
)

type searchResult struct {
	ID string `json:"id"`
	catalog.Record
}

var (
	searchJSON  bool
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <terms>...",
	Short: "Search recent projects like the desktop shell would",
	Long: `Read all recent-project sources once and print the projects matching every
term, best match first. No running service is needed.

Examples:
  jbsearch search api            # projects with "api" in name or path
  jbsearch search go svc --json  # both terms must match
  jbsearch search web --limit 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print JSON")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "show at most this many results (0 means all)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	disc := discovery.New(products(), cfg.DiscoveryOptions(), logger)
	snap, err := catalog.New(disc, logger).Refresh(cmd.Context())
	if err != nil {
		return err
	}

	ids := match.Snapshot(snap, match.Terms(args))
	if searchLimit > 0 && len(ids) > searchLimit {
		ids = ids[:searchLimit]
	}
	results := make([]searchResult, 0, len(ids))
	for _, id := range ids {
		if rec, ok := snap.Get(id); ok {
			results = append(results, searchResult{ID: id.String(), Record: *rec})
		}
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No matching projects")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tNAME\tPATH")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Product, r.Name, r.Path)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nTotal: %d of %d project(s)\n", len(results), snap.Len())
	return nil
}
