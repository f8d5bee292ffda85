// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/srecdump/internal/source"
)

var convertEntry uint16

var convertCmd = &cobra.Command{
	Use:   "convert <image.hex>",
	Short: "Convert an Intel HEX file to S-Records",
	Long: `Parse an Intel HEX file and stream its data out as S-Records.

Data segments are emitted in address order. The HEX start address, if
present, becomes the S9 entry address unless --entry is given. Data above
0xFFFF cannot be expressed with 16-bit addresses and is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().Uint16VarP(&convertEntry, "entry", "e", 0, "Entry address for the S9 record (default: HEX start address)")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := source.OpenIntelHex(path)
	if err != nil {
		return err
	}

	return runJob(cmd.Context(), job{
		title:    filepath.Base(path),
		src:      src,
		output:   outputFromFlags(),
		entry:    convertEntry,
		entrySet: cmd.Flags().Changed("entry"),
	})
}
