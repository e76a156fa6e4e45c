/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/relaychat/apiserver/internal/auth"
	"github.com/spf13/cobra"
)

var keygenOutDir string

// keygenCmd generates the Ed25519 key pair the server signs and
// verifies bearer tokens with.
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an Ed25519 token signing key pair",
	Long: `Generates a fresh Ed25519 key pair and writes sk.pem (private,
token signing) and pk.pem (public, token verification) to the output
directory. Point AUTH_PRIVATE_KEY_FILE and AUTH_PUBLIC_KEY_FILE at the
resulting files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		privatePEM, publicPEM, err := auth.GenerateKeyPair()
		if err != nil {
			return fmt.Errorf("generate key pair failed: %w", err)
		}

		if err := os.MkdirAll(keygenOutDir, 0o755); err != nil {
			return err
		}

		privatePath := filepath.Join(keygenOutDir, "sk.pem")
		publicPath := filepath.Join(keygenOutDir, "pk.pem")

		if err := os.WriteFile(privatePath, privatePEM, 0o600); err != nil {
			return err
		}
		if err := os.WriteFile(publicPath, publicPEM, 0o644); err != nil {
			return err
		}

		fmt.Printf("wrote %s and %s\n", privatePath, publicPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keygenOutDir, "out", "o", "keys", "output directory for the key pair")
}
