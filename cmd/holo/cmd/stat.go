package cmd

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/xattr"
	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Dump filesystem metadata and extended attributes for a file or chunk",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "failed to stat", path, err)
			os.Exit(1)
		}
		spew.Dump(info)
		listXattrs(path)
	},
}

// listXattrs prints every extended attribute set on path, best-effort:
// most filesystems holo's chunks land on don't support them at all, so a
// failure to list is not fatal.
func listXattrs(path string) {
	fh, err := os.Open(path)
	if err != nil {
		return
	}
	defer fh.Close()

	attrs, err := xattr.FList(fh)
	if err != nil {
		return
	}
	for _, name := range attrs {
		value, err := xattr.FGet(fh, name)
		if err != nil {
			fmt.Println(name, "= ? (couldn't read:", err, ")")
		} else {
			fmt.Println(name, "=", value)
		}
	}
}

func init() {
	rootCmd.AddCommand(statCmd)
}
