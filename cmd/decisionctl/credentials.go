package main

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bibbank/loan-decision/internal/infrastructure/credentials"
	"github.com/bibbank/loan-decision/pkg/auth"
	"github.com/bibbank/loan-decision/pkg/tlsutil"
)

func newHashPasswordCmd() *cobra.Command {
	var username, roles string
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print an AUTH_USERS entry for an operator",
		Long:  "Hashes the password with bcrypt. The password is read from stdin when not given as an argument.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no password on stdin")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := credentials.HashPassword(password)
			if err != nil {
				return err
			}
			if username == "" {
				printf(cmd, "%s\n", hash)
				return nil
			}
			entry := username + ":" + hash
			if roles != "" {
				entry += ":" + roles
			}
			printf(cmd, "%s\n", entry)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "Print a complete user:hash[:roles] entry for this user")
	cmd.Flags().StringVar(&roles, "roles", "", "Roles separated by |, for example operator|admin")
	return cmd
}

// Files written by gen-keys.
const (
	privateKeyFile = "jwt-private.pem"
	publicKeyFile  = "jwt-public.pem"
)

func newGenKeysCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "gen-keys",
		Short: "Generate an RSA key pair for JWT_PRIVATE_KEY_FILE and JWT_PUBLIC_KEY_FILE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			privPEM, pubPEM, err := auth.GenerateKeyPair()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(outDir, privateKeyFile), privPEM, 0o600); err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(outDir, publicKeyFile), pubPEM, 0o644); err != nil { //nolint:gosec // public key
				return err
			}
			printf(cmd, "wrote %s and %s to %s\n", privateKeyFile, publicKeyFile, outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	return cmd
}

func newGenCertsCmd() *cobra.Command {
	var (
		outDir   string
		hosts    []string
		validity time.Duration
	)
	cmd := &cobra.Command{
		Use:   "gen-certs",
		Short: "Generate a development CA and gRPC server certificate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := tlsutil.GenerateSelfSignedCert(hosts, outDir, validity); err != nil {
				return err
			}
			printf(cmd, "wrote %s, %s, %s and %s to %s\n",
				tlsutil.CAFile, tlsutil.CAKeyFile, tlsutil.ServerFile, tlsutil.ServerKeyFile, outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	cmd.Flags().StringSliceVar(&hosts, "host", []string{"localhost", "127.0.0.1"}, "DNS names or IPs the server certificate is valid for")
	cmd.Flags().DurationVar(&validity, "validity", 365*24*time.Hour, "Server certificate lifetime")
	return cmd
}
