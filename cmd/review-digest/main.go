// Command review-digest summarises merged store reviews from a JSON-lines
// store-card file.
package main

import (
	"os"

	"matjip/apps/backend/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Error().Err(err).Msg("review digest failed")
		os.Exit(1)
	}
}
