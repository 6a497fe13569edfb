package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitstore/pkg/bundle"
	"github.com/odvcencio/gitstore/pkg/objstore"
)

func newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Export or import the loose object set as a zstd-compressed stream",
	}
	cmd.AddCommand(newBundleExportCmd())
	cmd.AddCommand(newBundleImportCmd())
	return cmd
}

func newBundleExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <out-file>",
		Short: "Export every loose object into a bundle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepoHere()
			if err != nil {
				return err
			}
			loose, err := objstore.OpenLooseBackend(r.ObjectsPath())
			if err != nil {
				return fmt.Errorf("open loose backend: %w", err)
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			defer f.Close()

			n, err := bundle.Export(loose, f)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d objects to %s\n", n, args[0])
			return nil
		},
	}
}

func newBundleImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <in-file>",
		Short: "Import every object from a bundle file into the object database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepoHere()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			n, err := bundle.Import(r.DB(), f)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d objects from %s\n", n, args[0])
			return nil
		},
	}
}
