// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/acquire"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/store"
)

var readCmd = &cobra.Command{
	Use:   "read <identifier>",
	Short: "Print a stored paper's Markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	id, err := acquire.Classify(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, err := store.New(cfg.Storage.Path).Read(id)
	if err != nil {
		return fmt.Errorf("%w (run \"arxiv-assistant download %s\" first)", err, id)
	}
	_, err = fmt.Fprint(os.Stdout, text)
	return err
}
