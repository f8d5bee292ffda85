// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/term"

	"github.com/Thermoquad/srecdump/internal/config"
	"github.com/Thermoquad/srecdump/internal/sink"
	"github.com/Thermoquad/srecdump/pkg/srec"
)

// outputOptions selects where records go. At most one destination may be
// set; with none the records go to stdout.
type outputOptions struct {
	File string

	Port string
	Baud int

	URL         string
	Username    string
	NoSSLVerify bool

	S3 string

	LineEnding string
	NoColor    bool
}

// outputFromFlags collects the persistent output flags
func outputFromFlags() outputOptions {
	return outputOptions{
		File:        outPath,
		Port:        portName,
		Baud:        baudRate,
		URL:         wsURL,
		Username:    wsUsername,
		NoSSLVerify: wsNoSSLVerify,
		S3:          s3URL,
		LineEnding:  lineEnding,
		NoColor:     noColor,
	}
}

// outputFromConfig maps a normalized profile onto output options. Output
// flags given on the command line win over the profile.
func outputFromConfig(o config.OutputConfig, flags outputOptions) outputOptions {
	if flags.destinations() > 0 {
		return flags
	}
	return outputOptions{
		File:        o.File,
		Port:        o.Port,
		Baud:        o.Baud,
		URL:         o.URL,
		Username:    o.Username,
		NoSSLVerify: o.NoSSLVerify,
		S3:          o.S3,
		LineEnding:  o.LineEnding,
		NoColor:     flags.NoColor,
	}
}

func (o outputOptions) destinations() int {
	n := 0
	for _, v := range []string{o.File, o.Port, o.URL, o.S3} {
		if v != "" && v != "-" {
			n++
		}
	}
	return n
}

// toStdout reports whether records will be printed on stdout
func (o outputOptions) toStdout() bool {
	return o.destinations() == 0
}

// output is an open destination for S-Record lines
type output struct {
	sink   srec.LineSink
	info   string
	commit func(ctx context.Context) error
	closer io.Closer
}

// Commit finalizes the destination (the S3 upload). Other destinations
// have nothing to commit.
func (o *output) Commit(ctx context.Context) error {
	if o.commit == nil {
		return nil
	}
	return o.commit(ctx)
}

func (o *output) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}

// openOutput opens the destination selected by opts
func openOutput(ctx context.Context, opts outputOptions) (*output, error) {
	if opts.destinations() > 1 {
		return nil, errors.New("choose only one of --out, --port, --url, --s3")
	}

	terminator, err := srec.ParseLineEnding(opts.LineEnding)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.URL != "":
		// Get password if username is provided
		var password string
		if opts.Username != "" {
			password, err = GetPassword()
			if err != nil {
				return nil, err
			}
		}

		conn, err := OpenWebSocketConnection(ctx, opts.URL, opts.Username, password, opts.NoSSLVerify)
		if err != nil {
			return nil, err
		}
		return &output{
			sink:   srec.LineSinkFunc(conn.WriteLine),
			info:   opts.URL,
			closer: conn,
		}, nil

	case opts.Port != "":
		conn, err := OpenSerialConnection(opts.Port, opts.Baud)
		if err != nil {
			return nil, err
		}
		return &output{
			sink:   srec.NewWriterSinkWithTerminator(conn, terminator),
			info:   fmt.Sprintf("%s @ %d baud", opts.Port, opts.Baud),
			closer: conn,
		}, nil

	case opts.S3 != "":
		bucket, key, err := sink.ParseS3URL(opts.S3)
		if err != nil {
			return nil, err
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		up, err := sink.NewS3(s3.NewFromConfig(awsCfg), bucket, key)
		if err != nil {
			return nil, err
		}
		return &output{
			sink:   srec.NewWriterSinkWithTerminator(up, terminator),
			info:   up.Location(),
			commit: up.Commit,
			closer: up,
		}, nil

	case opts.File != "" && opts.File != "-":
		f, err := os.Create(opts.File)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", opts.File, err)
		}
		return &output{
			sink:   srec.NewWriterSinkWithTerminator(f, terminator),
			info:   opts.File,
			closer: f,
		}, nil
	}

	out := &output{info: "stdout"}
	if !opts.NoColor && term.IsTerminal(int(os.Stdout.Fd())) {
		out.sink = styledSink(os.Stdout, terminator)
	} else {
		out.sink = srec.NewWriterSinkWithTerminator(os.Stdout, terminator)
	}
	return out, nil
}
