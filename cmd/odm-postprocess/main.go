package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	odmpostprocess "github.com/menta2k/odm-postprocess"
	"github.com/menta2k/odm-postprocess/internal/cli"
	"github.com/menta2k/odm-postprocess/internal/logging"
)

func main() {
	logging.Setup("info", logging.FormatText)

	root := cli.NewRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(odmpostprocess.Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
