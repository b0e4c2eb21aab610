package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/jwtvalidator/internal/identity"
)

var uniqueIDFormat string

var uniqueIDCmd = &cobra.Command{
	Use:   "uniqueid [token|-]",
	Short: "Calcula el identificador único del portador del token",
	Long: `Calcula el identificador único en el formato pedido. Sin --format imprime
todos los formatos disponibles.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tokenClaims(cmd, args)
		if err != nil {
			return err
		}
		if uniqueIDFormat != "" {
			f, err := identity.ParseUniqueIDFormat(uniqueIDFormat)
			if err != nil {
				return err
			}
			id, err := identity.UniqueID(c, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		}

		out := make(map[string]string, len(identity.Formats))
		for _, f := range identity.Formats {
			id, err := identity.UniqueID(c, f)
			if err != nil {
				return err
			}
			out[string(f)] = id
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	uniqueIDCmd.Flags().StringVarP(&uniqueIDFormat, "format", "f", "", "Opaque | OpaqueURN | HumanReadable | HumanReadableURN | VerboseURN")
}
