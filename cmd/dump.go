// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/srecdump/internal/source"
)

var (
	dumpAddress uint16
	dumpOffset  int64
	dumpLength  int64
	dumpEntry   uint16
)

var dumpCmd = &cobra.Command{
	Use:   "dump <image.bin>",
	Short: "Encode a binary image as S-Records",
	Long: `Read a raw binary image and stream it out as S-Records.

The bytes from --offset (default 0) for --length bytes (default: to the end
of the file) are placed at --address. Numbers accept 0x prefixes.

Examples:
  srecdump dump rom.bin
  srecdump dump --offset 0x8000 --length 0x1000 --address 0x8000 flash.bin
  srecdump dump --entry 0x0100 --port /dev/ttyUSB0 --line-ending crlf rom.bin`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().Uint16VarP(&dumpAddress, "address", "a", 0, "S-Record address of the first byte")
	dumpCmd.Flags().Int64Var(&dumpOffset, "offset", 0, "File offset of the first byte")
	dumpCmd.Flags().Int64Var(&dumpLength, "length", 0, "Number of bytes to dump (0 = to end of file)")
	dumpCmd.Flags().Uint16VarP(&dumpEntry, "entry", "e", 0, "Entry address for the S9 record")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := source.OpenFile(path, nil, dumpAddress, dumpOffset, dumpLength)
	if err != nil {
		return err
	}

	return runJob(cmd.Context(), job{
		title:    filepath.Base(path),
		src:      src,
		output:   outputFromFlags(),
		entry:    dumpEntry,
		entrySet: true,
	})
}
