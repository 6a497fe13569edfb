package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitstore/pkg/objstore"
)

func newHashObjectCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "hash-object <file>",
		Short: "Compute (and optionally store) a blob's digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			raw := &objstore.RawObject{Type: objstore.TypeBlob, Length: int64(len(data)), Bytes: data}
			id, err := objstore.HashRawObject(raw)
			if err != nil {
				return fmt.Errorf("hash: %w", err)
			}

			if write {
				r, err := openRepoHere()
				if err != nil {
					return err
				}
				obj, err := r.New(objstore.TypeBlob)
				if err != nil {
					return err
				}
				blob, _ := obj.Blob()
				blob.Data = data
				obj.MarkModified()
				if err := r.Write(obj); err != nil {
					return fmt.Errorf("write: %w", err)
				}
				id = obj.Digest()
			}

			fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the blob to the object database")
	return cmd
}
