package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lifeledger/internal/taxonomy"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify MERCHANT...",
		Short: "Show the ledger category a merchant name maps to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "MERCHANT\tCATEGORY\tGROUP\n")
			for _, m := range args {
				category := taxonomy.Classify(m)
				fmt.Fprintf(w, "%s\t%s\t%s\n", m, category, taxonomy.ResolveGroup(category, ""))
			}
			return w.Flush()
		},
	}
}

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group CATEGORY",
		Short: "Show the category group a ledger category resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hint, _ := cmd.Flags().GetString("type")
			category := strings.TrimSpace(args[0])
			fmt.Println(taxonomy.ResolveGroup(category, hint))
			if spec, ok := taxonomy.Lookup(category); ok && len(spec.SubCategories) > 0 {
				fmt.Printf("sub-categories: %s\n", strings.Join(spec.SubCategories, ", "))
			}
			return nil
		},
	}
	cmd.Flags().String("type", "", "type hint used when the category has no keyword")
	return cmd
}
