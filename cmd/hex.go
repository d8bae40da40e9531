package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cosocaf/orange4-emulator/internal/hexfile"
)

var (
	hexInput  string
	hexOutput string
)

// hexCmd converts an ASCII hex-record listing into a packed program image.
var hexCmd = &cobra.Command{
	Use:   "hex --input path/to/listing --output path/to/image",
	Short: "convert a hex-record listing into a program image",
	Args:  cobra.NoArgs,
	Run:   runHex,
}

func init() {
	hexCmd.Flags().StringVarP(&hexInput, "input", "i", "", "path to the hex-record listing (required)")
	hexCmd.Flags().StringVarP(&hexOutput, "output", "o", "", "path to write the packed image (required)")
	hexCmd.MarkFlagRequired("input")
	hexCmd.MarkFlagRequired("output")
}

func runHex(cmd *cobra.Command, args []string) {
	in, err := os.Open(hexInput)
	if err != nil {
		logrus.WithError(err).WithField("path", hexInput).Fatal("opening listing")
	}
	defer in.Close()

	image, err := hexfile.Convert(in)
	if err != nil {
		logrus.WithError(errors.Wrap(err, "converting listing")).WithField("path", hexInput).Fatal("bad listing")
	}

	if err := os.WriteFile(hexOutput, image, 0o644); err != nil {
		logrus.WithError(err).WithField("path", hexOutput).Fatal("writing image")
	}
}
