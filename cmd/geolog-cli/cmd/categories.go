package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"geolog/internal/application/commands"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List observation categories",
	Long: `List the categories an observation can be logged under, with the key
to pass to "log --category" and the unit of the measured value.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		options, err := commands.NewListCategoriesCommand(nil).Execute(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tLABEL\tUNIT")
		for _, opt := range options {
			unit := opt.Category.Unit()
			if unit == "" {
				unit = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", opt.Category.Key(), opt.Category.Label(), unit)
		}
		return w.Flush()
	},
}
