package main

import (
	"bufio"
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pzverkov/quantum-go-fips/pkg/audit"
	"github.com/pzverkov/quantum-go-fips/pkg/fips"
	"github.com/pzverkov/quantum-go-fips/pkg/integrity"
)

const checksumVariable = "github.com/pzverkov/quantum-go-fips/pkg/integrity.ExpectedChecksum"

func newDigestCmd() *cobra.Command {
	var expect string

	cmd := &cobra.Command{
		Use:   "digest <executable>",
		Short: "Compute the integrity checksum of an executable",
		Long: `Compute the HMAC-SHA-256 integrity checksum over the code section of an
ELF, Mach-O or PE executable and print the linker flag that embeds it.

The checksum covers the code section only, so it survives being written
into the data section by a second link:

  go build -o svc ./cmd/svc
  go build -o svc -ldflags "$(fips-module digest --ldflags-only svc)" ./cmd/svc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, region, err := integrity.NewVerifier(integrity.FileLocator{Path: args[0]}).Digest()
			if err != nil {
				return err
			}
			if expect != "" {
				want, err := integrity.ParseDigest(expect)
				if err != nil {
					return err
				}
				if err := integrity.NewVerifier(integrity.StaticLocator{Name: region.Name, Data: region.Data}).Verify(want); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if only, _ := cmd.Flags().GetBool("ldflags-only"); only {
				fmt.Fprintf(out, "-X %s=%s\n", checksumVariable, d)
				return nil
			}
			fmt.Fprintf(out, "region:   %s (%d bytes)\n", region.Name, len(region.Data))
			fmt.Fprintf(out, "checksum: %s\n", d)
			fmt.Fprintf(out, "ldflags:  -ldflags \"-X %s=%s\"\n", checksumVariable, d)
			return nil
		},
	}
	cmd.Flags().StringVar(&expect, "expect", "", "Fail unless the checksum equals this hex value")
	cmd.Flags().Bool("ldflags-only", false, "Print only the -X linker flag")
	return cmd
}

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit log operations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "verify <file>",
		Short: "Verify the hash chain of an audit log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := audit.VerifyChain(args[0])
			if err != nil {
				return fmt.Errorf("audit chain broken after %d valid events: %w", n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "audit chain valid: %d events\n", n)
			return nil
		},
	})
	return cmd
}

func newHashCredentialCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-credential",
		Short: "Hash an operator credential read from stdin",
		Long: `Read one credential line from stdin and print its argon2id encoding for
the credentials section of the configuration (scheme: argon2id).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadBytes('\n')
			line = bytes.TrimRight(line, "\r\n")
			if len(line) == 0 {
				if err != nil {
					return fmt.Errorf("failed to read credential: %w", err)
				}
				return fmt.Errorf("empty credential")
			}
			encoded, err := fips.HashCredential(line, nil, fips.DefaultArgon2Params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return nil
		},
	}
}
