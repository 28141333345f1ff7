package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bionicotaku/astarte-jwtx"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect TOKEN",
	Short: "Decode a token, verifying it when --key is set",
	Long:  `Decode a token and print its claims. Pass "-" to read the token from stdin.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	token := args[0]
	if token == "-" {
		token, err = readLine(os.Stdin)
		if err != nil {
			return err
		}
	}

	alg, err := jwtx.HeaderAlgorithm(token)
	if err != nil {
		return err
	}

	var claims *jwtx.Claims
	verified := false
	if cfg.Key == "" {
		claims, err = jwtx.Inspect(token)
	} else {
		var key []byte
		key, err = readKey(cfg.Key)
		if err != nil {
			return err
		}
		var validator *jwtx.Validator
		validator, err = jwtx.NewValidator(jwtx.ValidatorConfig{Key: key})
		if err != nil {
			return err
		}
		claims, err = validator.Validate(token)
		verified = err == nil
	}
	if err != nil {
		return err
	}
	logger.Debug("decoded token", "alg", alg, "verified", verified)

	printClaims(cmd.OutOrStdout(), alg.String(), verified, claims)
	return nil
}

func printClaims(w io.Writer, alg string, verified bool, claims *jwtx.Claims) {
	fmt.Fprintln(w, "== Astarte Token ==")
	fmt.Fprintf(w, "algorithm    : %s\n", alg)
	fmt.Fprintf(w, "verified     : %t\n", verified)
	fmt.Fprintf(w, "issuer       : %s\n", claims.Issuer)
	if claims.Subject != "" {
		fmt.Fprintf(w, "subject      : %s\n", claims.Subject)
	}
	if !claims.IssuedAt.IsZero() {
		fmt.Fprintf(w, "issued_at    : %s\n", claims.IssuedAt.Format(time.RFC3339))
	}
	if claims.ExpiresAt.IsZero() {
		fmt.Fprintln(w, "expires_at   : never")
	} else {
		fmt.Fprintf(w, "expires_at   : %s\n", claims.ExpiresAt.Format(time.RFC3339))
	}
	for _, scope := range jwtx.Scopes() {
		patterns, ok := claims.Grants[scope]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%-13s: %s\n", scope.ClaimKey(), strings.Join(patterns, ", "))
	}
	if len(claims.CustomClaims) > 0 {
		fmt.Fprintln(w, "custom_claims:")
		for k, v := range claims.CustomClaims {
			fmt.Fprintf(w, "  %s: %v\n", k, v)
		}
	}
}

func readLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.ErrUnexpectedEOF
}
