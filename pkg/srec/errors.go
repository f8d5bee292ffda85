// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package srec

import "errors"

var (
	// ErrNoSink is returned when data is written before a sink is attached.
	ErrNoSink = errors.New("srec: no sink attached")

	// ErrFinished is returned for any operation after Finish until Reset.
	ErrFinished = errors.New("srec: session finished")

	// ErrFailed is returned after a sink write failed. The output already
	// written can no longer be trusted to match the encoder's bookkeeping,
	// so the session must be restarted with Reset.
	ErrFailed = errors.New("srec: session failed")
)
