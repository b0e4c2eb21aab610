package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/jwtvalidator/internal/identity"
)

var classifyFormat string

var classifyCmd = &cobra.Command{
	Use:   "classify [token|-]",
	Short: "Clasifica la identidad del portador del token",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tokenClaims(cmd, args)
		if err != nil {
			return err
		}
		id, err := identity.Classify(c)
		if err != nil {
			return err
		}
		switch classifyFormat {
		case "text":
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return err
		case "json":
			return printJSON(cmd.OutOrStdout(), id)
		}
		return fmt.Errorf("unknown output %q (json|text)", classifyFormat)
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyFormat, "output", "o", "json", "json | text")
}
