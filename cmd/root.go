// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	// Serial output flags
	portName string
	baudRate int

	// WebSocket output flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// File and object storage output flags
	outPath string
	s3URL   string

	// Formatting flags
	lineEnding string
	noColor    bool
	useTUI     bool
)

var rootCmd = &cobra.Command{
	Use:   "srecdump",
	Short: "Stream memory dumps as Motorola S-Records",
	Long: `srecdump - Encode memory dumps as S-Records and stream them out line by line.

Bytes come from a binary image, an Intel HEX file, a Modbus device or a YAML
profile. Each S-Record (S0 header, S1 data, S5 count, S9 entry) is written to
the output the moment it is complete, so nothing but the current 32-byte line
is ever held in memory.

Output modes:
  Stdout:    default (coloured on a terminal)
  File:      --out dump.s19
  Serial:    --port /dev/ttyUSB0 [--baud 115200] [--line-ending crlf]
  WebSocket: --url ws://host/path [--username user]
  S3:        --s3 s3://bucket/key

For WebSocket authentication, the password is read from the SRECDUMP_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	// Serial output flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket output flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// File and object storage output flags
	rootCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "Write records to a file (- for stdout)")
	rootCmd.PersistentFlags().StringVar(&s3URL, "s3", "", "Upload records to s3://bucket/key")

	// Formatting flags
	rootCmd.PersistentFlags().StringVar(&lineEnding, "line-ending", "lf", "Record terminator: lf or crlf")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured records on a terminal")
	rootCmd.PersistentFlags().BoolVar(&useTUI, "tui", false, "Show a progress UI (output must not be stdout)")
}

// Execute runs the root command. Ctrl+C cancels the running dump.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
