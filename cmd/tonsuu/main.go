// tonsuu is the dump truck load checker: it estimates the tonnage on a
// truck's bed from a photo, keeps a judgment history with operator feedback,
// and reports how accurate the estimates have been.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/YuujiKamura/tonsuu-checker/internal/config"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config.LoadEnvFile()

	if err := rootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
