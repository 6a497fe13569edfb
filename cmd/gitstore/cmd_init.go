package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitstore/pkg/repository"
)

func newInitCmd() *cobra.Command {
	var bare bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty object store repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			r, err := repository.Init(abs, bare)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty repository in %s\n", r.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&bare, "bare", false, "create a bare repository")
	return cmd
}
