package cmd

import (
	"os"

	"github.com/giuliom95/baker2/config"
	"github.com/giuliom95/baker2/log"
	"github.com/urfave/cli"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = log.New("baker2")

// Configure log verbosity and sinks from the logging config and the global
// flags. The returned func closes the log file sink, if one was opened.
func setupLogging(ctx *cli.Context, cfg *config.LoggingConfig) func() {
	level := log.ParseLevel(cfg.Level)
	if ctx.GlobalBool("v") && level > log.Info {
		level = log.Info
	}
	if ctx.GlobalBool("vv") {
		level = log.Debug
	}

	logFile := cfg.LogFile
	if ctx.GlobalIsSet("log-file") {
		logFile = ctx.GlobalString("log-file")
	}

	if logFile == "" {
		log.SetSink(os.Stdout)
		log.SetLevel(level)
		return func() {}
	}

	fileSink := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
	log.SetSinks(os.Stdout, fileSink)
	log.SetLevel(level)

	return func() {
		if err := fileSink.Close(); err != nil {
			logger.Warningf("could not close log file %s: %v", logFile, err)
		}
	}
}
