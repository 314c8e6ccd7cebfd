package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// failRun surfaces a run-level error on w and in the persistent log before
// handing it back to cobra. The root command silences cobra's own error
// printing, so this is the only place these errors reach the user.
func failRun(log zerolog.Logger, w io.Writer, err error) error {
	log.Error().Err(err).Msg("run failed")
	fmt.Fprintf(w, "error: %v\n", err)
	return err
}
