// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/oddrunner/simbridge/cmd/simbridge/cli"
	"github.com/oddrunner/simbridge/lib/journal"
	"github.com/oddrunner/simbridge/simapi"
)

func journalCommand() *cli.Command {
	var kindFilter string
	return &cli.Command{
		Name:    "journal",
		Summary: "List the exchanges recorded in a journal",
		Description: `Read a journal written by "simbridge serve --journal" and list every
request/reply exchange in order, with the reply's outcome.

Every record's digest is verified; the first mismatch stops the
listing with an error.`,
		Usage: "simbridge journal [flags] FILE",
		Flags: func() *pflag.FlagSet {
			set := pflag.NewFlagSet("journal", pflag.ContinueOnError)
			set.StringVar(&kindFilter, "kind", "", "only list this request kind (for example UpdateFrame)")
			return set
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one journal file")
			}
			var filter *simapi.Kind
			if kindFilter != "" {
				kind, err := simapi.ParseKind(kindFilter)
				if err != nil {
					return err
				}
				filter = &kind
			}
			reader, err := journal.Open(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()
			return listJournal(os.Stdout, reader, filter)
		},
	}
}

// listJournal writes one line per record. A nil filter lists all kinds.
func listJournal(w io.Writer, reader *journal.Reader, filter *simapi.Kind) error {
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tTIME\tSESSION\tKIND\tOUTCOME\tDESCRIPTION")
	for {
		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			tw.Flush()
			return err
		}
		if err := record.Verify(); err != nil {
			tw.Flush()
			return err
		}
		if filter != nil && record.Kind != filter.String() {
			continue
		}

		outcome, description := "success", ""
		response, err := simapi.DecodeResponse(record.Response)
		switch {
		case err != nil:
			outcome = "undecodable"
		case !response.Result.Success:
			outcome = "failure"
			description = response.Result.Description
		default:
			description = response.Result.Description
		}
		session := record.Session
		if len(session) > 8 {
			session = session[:8]
		}
		if session == "" {
			session = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			record.Sequence,
			record.Time().Format(time.RFC3339Nano),
			session,
			record.Kind,
			outcome,
			description,
		)
	}
	return tw.Flush()
}
