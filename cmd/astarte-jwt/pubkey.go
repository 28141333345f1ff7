package main

import (
	"encoding/json"
	"fmt"

	"github.com/bionicotaku/astarte-jwtx"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/spf13/cobra"
)

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "Print the public JWK set of the signing key",
	Args:  cobra.NoArgs,
	RunE:  runPubkey,
}

func init() {
	pubkeyCmd.Flags().String("kid", "", "Key ID to set on the JWK")
	cobra.CheckErr(v.BindPFlag("kid", pubkeyCmd.Flags().Lookup("kid")))
}

func runPubkey(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := readKey(cfg.Key)
	if err != nil {
		return err
	}

	pub, err := jwtx.PublicKey(b)
	if err != nil {
		return err
	}
	if cfg.KeyID != "" {
		if err := pub.Set(jwk.KeyIDKey, cfg.KeyID); err != nil {
			return fmt.Errorf("set kid: %w", err)
		}
	}

	set := jwk.NewSet()
	if err := set.AddKey(pub); err != nil {
		return fmt.Errorf("add key: %w", err)
	}
	out, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal jwks: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
