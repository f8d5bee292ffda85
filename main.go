// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// srecdump - Motorola S-Record dump tool
//
// Streams memory images, Intel HEX files and Modbus register windows out
// as S-Records over serial, WebSocket, files or S3.

package main

import (
	"os"

	"github.com/Thermoquad/srecdump/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
