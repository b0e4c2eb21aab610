package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/jwtvalidator/internal/claims"
	"github.com/dropDatabas3/jwtvalidator/internal/jwt"
)

var (
	asHeader   bool
	noVerify   bool
	claimsJSON bool
	asPayload  bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify [token|-]",
	Short: "Verifica un token e imprime sus claims",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := tokenClaims(cmd, args)
		if err != nil {
			return err
		}
		if asPayload {
			p, err := c.Decode()
			if err != nil {
				return fmt.Errorf("decoding payload: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), p)
		}
		return printJSON(cmd.OutOrStdout(), c)
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&asPayload, "payload", false, "imprime el payload tipado en lugar de los claims crudos")
	verifyCmd.Flags().BoolVar(&claimsJSON, "claims", false, "la entrada es el payload JSON (con --payload, solo lo tipa)")
	for _, c := range []*cobra.Command{verifyCmd, classifyCmd, uniqueIDCmd} {
		c.Flags().BoolVar(&asHeader, "header", false, `la entrada es un header Authorization completo ("Bearer <jwt>")`)
	}
	for _, c := range []*cobra.Command{classifyCmd, uniqueIDCmd} {
		c.Flags().BoolVar(&noVerify, "no-verify", false, "decodifica sin verificar firma (no requiere el servicio de claves)")
		c.Flags().BoolVar(&claimsJSON, "claims", false, "la entrada es el payload JSON, no un token")
	}
}

// tokenClaims lee el token y lo verifica, salvo --no-verify.
func tokenClaims(cmd *cobra.Command, args []string) (claims.Claims, error) {
	raw, err := readToken(cmd.InOrStdin(), args)
	if err != nil {
		return nil, err
	}
	if claimsJSON {
		var c claims.Claims
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("invalid claims JSON: %w", err)
		}
		return c, nil
	}
	if noVerify {
		if asHeader {
			raw = stripBearer(raw)
		}
		return jwt.DecodeUnverified(raw)
	}

	container, err := buildContainer()
	if err != nil {
		return nil, err
	}
	defer container.Close()
	container.Warm(cmd.Context())

	if asHeader {
		return container.Verifier.VerifyAuthorizationHeader(cmd.Context(), raw)
	}
	return container.Verifier.VerifyToken(cmd.Context(), raw)
}

func stripBearer(h string) string {
	if len(h) > 7 && h[:7] == "Bearer " {
		return h[7:]
	}
	return h
}
