package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	grpcPresentation "github.com/bibbank/loan-decision/internal/presentation/grpc"
	"github.com/bibbank/loan-decision/pkg/tlsutil"
)

type decideFlags struct {
	addr       string
	token      string
	caFile     string
	plaintext  bool
	skipVerify bool
	timeout    time.Duration
}

func newDecideCmd() *cobra.Command {
	var flags decideFlags
	cmd := &cobra.Command{
		Use:   "decide <personal-code> <amount> <period-months>",
		Short: "Ask the gRPC API for a loan decision",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := strconv.ParseInt(args[2], 10, 32)
			if err != nil {
				return fmt.Errorf("period must be a whole number of months: %w", err)
			}
			return runDecide(cmd, flags, &grpcPresentation.DecideRequest{
				PersonalCode: args[0],
				LoanAmount:   args[1],
				LoanPeriod:   int32(period),
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.addr, "addr", "localhost:9091", "gRPC address of the decision service")
	f.StringVar(&flags.token, "token", "", "Bearer token from POST /api/authenticate")
	f.StringVar(&flags.caFile, "ca", "", "CA certificate; the system pool when empty")
	f.BoolVar(&flags.plaintext, "plaintext", false, "Connect without TLS")
	f.BoolVar(&flags.skipVerify, "insecure-skip-verify", false, "Do not verify the server certificate")
	f.DurationVar(&flags.timeout, "timeout", 10*time.Second, "Call timeout")
	return cmd
}

func runDecide(cmd *cobra.Command, flags decideFlags, req *grpcPresentation.DecideRequest) error {
	var creds credentials.TransportCredentials
	if flags.plaintext {
		creds = insecure.NewCredentials()
	} else {
		var err error
		if creds, err = tlsutil.ClientTLSConfig(flags.caFile, flags.skipVerify); err != nil {
			return err
		}
	}

	conn, err := grpc.NewClient(flags.addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return fmt.Errorf("dial %s: %w", flags.addr, err)
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := contextWithTimeout(cmd, flags.timeout)
	defer cancel()
	if flags.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+flags.token)
	}

	resp, err := grpcPresentation.NewDecisionServiceClient(conn).Decide(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
