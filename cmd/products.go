package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gurisko/jbsearch/internal/discovery"
	"github.com/gurisko/jbsearch/internal/registry"
)

type productInfo struct {
	*registry.Product
	Sources []discovery.Source `json:"sources"`
}

var productsJSON bool

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List known IDE products and the files read for each",
	RunE:  runProducts,
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.Flags().BoolVar(&productsJSON, "json", false, "print JSON")
}

func runProducts(cmd *cobra.Command, args []string) error {
	reg := products()
	opts := cfg.DiscoveryOptions()

	out := make([]productInfo, 0, reg.Len())
	for _, p := range reg.List() {
		srcs, err := discovery.Locate(p, opts.Dirs, opts.AllVersions)
		if err != nil {
			return err
		}
		out = append(out, productInfo{Product: p, Sources: srcs})
	}

	if productsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFORMAT\tSOURCES")
	for _, info := range out {
		sources := "-"
		if len(info.Sources) > 0 {
			list := make([]string, len(info.Sources))
			for i, s := range info.Sources {
				list[i] = s.Path
			}
			sources = strings.Join(list, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.ID, info.Name, info.Format, sources)
	}
	return w.Flush()
}
