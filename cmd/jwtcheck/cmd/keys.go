package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/jwtvalidator/internal/jwt"
)

var keysOutput string

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Consulta el servicio de claves públicas",
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista las claves publicadas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := buildContainer()
		if err != nil {
			return err
		}
		defer container.Close()

		all, err := container.Keys.GetAll(cmd.Context())
		if err != nil {
			return err
		}
		keys := make([]*jwt.SigningKey, 0, len(all))
		for _, k := range all {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].ID < keys[j].ID })
		return printKeys(cmd, keys)
	},
}

var keysGetCmd = &cobra.Command{
	Use:   "get <keyId>",
	Short: "Obtiene una clave por id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid key id %q", args[0])
		}
		container, err := buildContainer()
		if err != nil {
			return err
		}
		defer container.Close()

		k, err := container.Keys.GetOne(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printKeys(cmd, []*jwt.SigningKey{k})
	},
}

func printKeys(cmd *cobra.Command, keys []*jwt.SigningKey) error {
	if keysOutput == "json" {
		return printJSON(cmd.OutOrStdout(), keys)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tALGORITHM\tSTATE\tCREATED\tEXPIRES")
	for _, k := range keys {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", k.ID, k.Algorithm, k.State, fmtTime(k.CreatedAt), fmtTime(k.ExpiresAt))
	}
	return w.Flush()
}

func fmtTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func init() {
	keysCmd.PersistentFlags().StringVarP(&keysOutput, "output", "o", "table", "table | json")
	keysCmd.AddCommand(keysListCmd, keysGetCmd)
}
