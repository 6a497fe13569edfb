package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitstore/pkg/gitobject"
	"github.com/odvcencio/gitstore/pkg/objstore"
	"github.com/odvcencio/gitstore/pkg/repository"
)

func printSize(cmd *cobra.Command, obj *repository.Object) error {
	b, err := marshaledBytes(obj)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), len(b))
	return nil
}

// marshaledBytes renders obj's canonical serialization the same way the
// write-back pipeline would, without touching the object database.
func marshaledBytes(obj *repository.Object) ([]byte, error) {
	switch obj.Kind() {
	case objstore.TypeBlob:
		b, _ := obj.Blob()
		return gitobject.MarshalBlob(b), nil
	case objstore.TypeTree:
		t, _ := obj.Tree()
		return gitobject.MarshalTree(t), nil
	case objstore.TypeCommit:
		c, _ := obj.Commit()
		return gitobject.MarshalCommit(c), nil
	case objstore.TypeTag:
		t, _ := obj.Tag()
		return gitobject.MarshalTag(t), nil
	default:
		return nil, fmt.Errorf("cat-file: unsupported type %v", obj.Kind())
	}
}

func prettyPrintObject(cmd *cobra.Command, obj *repository.Object) error {
	out := cmd.OutOrStdout()
	switch obj.Kind() {
	case objstore.TypeBlob:
		b, _ := obj.Blob()
		_, err := out.Write(b.Data)
		return err
	case objstore.TypeTree:
		t, _ := obj.Tree()
		for _, e := range t.Entries {
			fmt.Fprintf(out, "%s %s\t%s\n", e.Mode, e.ID, e.Name)
		}
		return nil
	case objstore.TypeCommit:
		c, _ := obj.Commit()
		fmt.Fprintf(out, "tree %s\n", c.Tree)
		for _, p := range c.Parents {
			fmt.Fprintf(out, "parent %s\n", p)
		}
		fmt.Fprintf(out, "author %s %d\n", c.Author, c.AuthorTime)
		fmt.Fprintf(out, "committer %s %d\n", c.Committer, c.CommitTime)
		fmt.Fprintln(out)
		fmt.Fprintln(out, c.Message)
		return nil
	case objstore.TypeTag:
		t, _ := obj.Tag()
		fmt.Fprintf(out, "object %s\n", t.Target)
		fmt.Fprintf(out, "type %s\n", t.TargetType)
		fmt.Fprintf(out, "tag %s\n", t.Name)
		fmt.Fprintf(out, "tagger %s %d\n", t.Tagger, t.TaggerTime)
		fmt.Fprintln(out)
		fmt.Fprintln(out, t.Message)
		return nil
	default:
		return fmt.Errorf("cat-file: unsupported type %v", obj.Kind())
	}
}
