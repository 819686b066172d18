package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giuliom95/baker2/config"
	"github.com/giuliom95/baker2/log"
	"github.com/urfave/cli"
)

func globalFlagContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	global := flag.NewFlagSet("baker2", flag.ContinueOnError)
	global.Bool("v", false, "")
	global.Bool("vv", false, "")
	global.String("log-file", "", "")
	global.String("config", "", "")
	if err := global.Parse(args); err != nil {
		t.Fatal(err)
	}

	app := cli.NewApp()
	parent := cli.NewContext(app, global, nil)
	return cli.NewContext(app, flag.NewFlagSet("bake", flag.ContinueOnError), parent)
}

func TestSetupLoggingWritesLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "bake.log")
	cfg := config.Default().Logging

	closeLog := setupLogging(globalFlagContext(t, "-v", "--log-file", logFile), &cfg)
	defer func() {
		log.SetSink(os.Stdout)
		log.SetLevel(log.Notice)
	}()

	logger.Infof("info message %d", 1)
	logger.Debugf("debug message %d", 2)
	closeLog()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "info message 1") {
		t.Fatalf("expected -v to enable info messages in the log file; got %q", out)
	}
	if strings.Contains(out, "debug message 2") {
		t.Fatalf("expected debug messages to be filtered; got %q", out)
	}
}
