package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dropDatabas3/jwtvalidator/internal/app"
	"github.com/dropDatabas3/jwtvalidator/internal/config"
	"github.com/dropDatabas3/jwtvalidator/internal/observability/logger"
)

var (
	configPath string
	envFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "jwtcheck",
	Short: "Verifica tokens y consulta el servicio de claves públicas",
	Long: `jwtcheck verifica JWT contra el servicio de claves públicas, clasifica la
identidad del portador y calcula sus identificadores únicos.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			_ = godotenv.Load(envFile)
		}
		if verbose {
			logger.Init(logger.Config{Env: "dev", Level: "debug"})
		} else {
			logger.Replace(zap.NewNop())
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "ruta a config.yaml (default: solo variables de entorno)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "archivo .env a cargar antes de leer la configuración")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "loguea en stderr")
	rootCmd.AddCommand(verifyCmd, classifyCmd, uniqueIDCmd, keysCmd)
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildContainer() (*app.Container, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.Build(cfg)
}

// readToken toma el token del argumento o, con "-" o sin argumentos, de stdin.
func readToken(in io.Reader, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return strings.TrimSpace(args[0]), nil
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", fmt.Errorf("no token given")
	}
	return tok, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
