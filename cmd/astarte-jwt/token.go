package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bionicotaku/astarte-jwtx"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token [scope|preset...]",
	Short: "Generate a signed token",
	Long: `Generate a token granting all access on each named scope.

Scopes: housekeeping, realm-management, pairing, appengine, channels, flow.
Presets: all, dashboard, astartectl.
Use --claim scope=PATTERN to grant a specific pattern instead.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringArrayP("claim", "c", nil, "Grant PATTERN on a scope, as scope=PATTERN (repeatable)")
	tokenCmd.Flags().Int64P("expiry", "e", 300, "Token validity in seconds")
	tokenCmd.Flags().Bool("no-expiry", false, "Omit the exp claim")
	tokenCmd.Flags().String("issuer", "", "Override the iss claim")
	tokenCmd.Flags().String("subject", "", "Set the sub claim")
	cobra.CheckErr(v.BindPFlag("expiry", tokenCmd.Flags().Lookup("expiry")))
	cobra.CheckErr(v.BindPFlag("no_expiry", tokenCmd.Flags().Lookup("no-expiry")))
	cobra.CheckErr(v.BindPFlag("issuer", tokenCmd.Flags().Lookup("issuer")))
	cobra.CheckErr(v.BindPFlag("subject", tokenCmd.Flags().Lookup("subject")))
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	claimFlags, err := cmd.Flags().GetStringArray("claim")
	if err != nil {
		return err
	}

	creds, err := buildCredentials(args, claimFlags)
	if err != nil {
		return err
	}
	creds, err = applyMetadata(creds, cfg)
	if err != nil {
		return err
	}

	key, err := readKey(cfg.Key)
	if err != nil {
		return err
	}
	alg, err := jwtx.DetectAlgorithm(key)
	if err != nil {
		return err
	}
	logger.Debug("signing token", "alg", alg, "expiry", creds.Expiry().String(), "scopes", len(creds.Claims()))

	token, err := jwtx.ToJWT(creds, key)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

// buildCredentials merges the named scopes and presets with explicit
// scope=PATTERN grants.
func buildCredentials(names, claims []string) (jwtx.Credentials, error) {
	if len(names) == 0 && len(claims) == 0 {
		return jwtx.Credentials{}, errors.New("at least one scope, preset or --claim is required")
	}

	creds := jwtx.NewCredentials()
	for _, name := range names {
		grants, err := grantsFor(name)
		if err != nil {
			return jwtx.Credentials{}, err
		}
		creds = appendGrants(creds, grants)
	}

	for _, claim := range claims {
		scopeName, pattern, ok := strings.Cut(claim, "=")
		if !ok || pattern == "" {
			return jwtx.Credentials{}, fmt.Errorf("invalid claim %q, expected scope=PATTERN", claim)
		}
		scope, err := jwtx.ParseScope(scopeName)
		if err != nil {
			return jwtx.Credentials{}, err
		}
		creds = creds.AppendClaim(scope, pattern)
	}
	return creds, nil
}

func grantsFor(name string) (map[jwtx.Scope][]string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "all", "dashboard":
		return jwtx.DashboardCredentials().Claims(), nil
	case "astartectl", "cli":
		return jwtx.CLIToolCredentials().Claims(), nil
	}

	scope, err := jwtx.ParseScope(name)
	if err != nil {
		return nil, err
	}
	if scope == jwtx.ScopeChannels {
		return map[jwtx.Scope][]string{scope: jwtx.AppEngineAllAccess().Patterns(jwtx.ScopeChannels)}, nil
	}
	return map[jwtx.Scope][]string{scope: {jwtx.AllAccessPattern}}, nil
}

// appendGrants adds the patterns creds does not already carry, so
// overlapping scopes and presets grant each pattern once.
func appendGrants(creds jwtx.Credentials, grants map[jwtx.Scope][]string) jwtx.Credentials {
	for _, scope := range jwtx.Scopes() {
		for _, pattern := range grants[scope] {
			if slices.Contains(creds.Patterns(scope), pattern) {
				continue
			}
			creds = creds.AppendClaim(scope, pattern)
		}
	}
	return creds
}

func applyMetadata(creds jwtx.Credentials, cfg Config) (jwtx.Credentials, error) {
	if cfg.Issuer != "" {
		creds = creds.SetIssuer(cfg.Issuer)
	}
	if cfg.Subject != "" {
		creds = creds.SetSubject(cfg.Subject)
	}
	if cfg.NoExpiry {
		return creds.SetExpiry(jwtx.NoExpiry), nil
	}
	expiry, err := jwtx.ExpiresIn(cfg.Expiry)
	if err != nil {
		return jwtx.Credentials{}, err
	}
	return creds.SetExpiry(expiry), nil
}
