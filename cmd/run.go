package cmd

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cosocaf/orange4-emulator/internal/config"
	"github.com/cosocaf/orange4-emulator/internal/monitor"
	"github.com/cosocaf/orange4-emulator/internal/orange4"
)

var (
	runInput  string
	runConfig string
	runLog    string
)

// runCmd loads a packed program image and hands the machine to the monitor
// until the user quits.
var runCmd = &cobra.Command{
	Use:   "run --input path/to/image",
	Short: "run a program image in the emulator",
	Args:  cobra.NoArgs,
	Run:   runOrange4,
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "path to the 128-byte program image (required)")
	runCmd.Flags().StringVarP(&runConfig, "config", "c", "", "path to a TOML runtime config")
	runCmd.Flags().StringVarP(&runLog, "log", "l", "", "append the guest event log to this file")
	runCmd.MarkFlagRequired("input")
}

func runOrange4(cmd *cobra.Command, args []string) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	if runLog != "" {
		f, err := os.OpenFile(runLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logrus.WithError(err).Fatal("opening event log")
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cfg := config.Default()
	if runConfig != "" {
		var err error
		cfg, err = config.Load(runConfig)
		if err != nil {
			logrus.WithError(err).WithField("path", runConfig).Fatal("loading config")
		}
	}

	image, err := os.ReadFile(runInput)
	if err != nil {
		logrus.WithError(err).WithField("path", runInput).Fatal("reading program image")
	}

	vm, err := orange4.NewVM(image)
	if err != nil {
		logrus.WithError(errors.Wrap(err, "creating VM")).Fatal("bad program image")
	}

	if err := monitor.New(vm, cfg, log).Run(); err != nil {
		logrus.WithError(err).Fatal("monitor exited")
	}
}
