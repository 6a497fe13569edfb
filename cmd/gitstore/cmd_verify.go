package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitstore/pkg/digest"
	"github.com/odvcencio/gitstore/pkg/objstore"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <digest>",
		Short: "Re-hash a stored object and confirm it reproduces the given digest",
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
				return fmt.Errorf("verify %s: %w", id, err)
			}

			serialized, err := marshaledBytes(obj)
			if err != nil {
				return err
			}
			raw := &objstore.RawObject{Type: obj.Kind(), Length: int64(len(serialized)), Bytes: serialized}
			recomputed, err := objstore.HashRawObject(raw)
			if err != nil {
				return fmt.Errorf("verify %s: %w", id, err)
			}

			if recomputed != id {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: MISMATCH (recomputed %s)\n", id, recomputed)
				return fmt.Errorf("digest mismatch")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", id)
			return nil
		},
	}
}
