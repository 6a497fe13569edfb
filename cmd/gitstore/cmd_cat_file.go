package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitstore/pkg/digest"
)

func newCatFileCmd() *cobra.Command {
	var showType, showSize, prettyPrint bool
	cmd := &cobra.Command{
		Use:   "cat-file <digest>",
		Short: "Report the type, size, or content of a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := digest.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse digest: %w", err)
			}

			r, err := openRepoHere()
			if err != nil {
				return err
			}
			obj, err := r.Lookup(id, nil)
			if err != nil {
				return err
			}

			switch {
			case showType:
				fmt.Fprintln(cmd.OutOrStdout(), obj.Kind())
			case showSize:
				return printSize(cmd, obj)
			case prettyPrint:
				return prettyPrintObject(cmd, obj)
			default:
				return fmt.Errorf("one of -t, -s, -p is required")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object's type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the object's serialized size")
	cmd.Flags().BoolVarP(&prettyPrint, "pretty", "p", false, "pretty-print the object's content")
	return cmd
}
