package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/radif/assetstore/internal/storage"
)

type uploadResult struct {
	URL         string            `json:"url"`
	Derivatives map[string]string `json:"derivatives"`
}

func (c *cli) uploadCmd() *cobra.Command {
	var dir, name string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Save an image and its resized derivatives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			src := args[0]
			contentType, err := sniff(src)
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(src)
			}

			saved, err := c.app.Storage.SaveAll(ctx, storage.UploadRequest{
				Path:        src,
				Name:        name,
				ContentType: contentType,
			}, dir)
			if err != nil {
				return err
			}

			res := uploadResult{URL: saved.URL, Derivatives: saved.Derivatives}
			return c.print(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintln(w, res.URL)
				for _, tag := range slices.Sorted(maps.Keys(res.Derivatives)) {
					fmt.Fprintf(w, "  %-12s %s\n", tag, res.Derivatives[tag])
				}
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Target directory (default <prefix>/YYYY/MM)")
	cmd.Flags().StringVar(&name, "name", "", "File name to store under (default: the source's base name)")
	return cmd
}

func (c *cli) existsCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "exists <name>",
		Short: "Report whether an object is stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			ok := c.app.Storage.Exists(ctx, args[0], dir)
			return c.print(cmd.OutOrStdout(), map[string]bool{"exists": ok}, func(w io.Writer) {
				fmt.Fprintln(w, ok)
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory holding the object")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			if !c.app.Storage.Delete(ctx, args[0], dir) {
				return errors.New("delete failed, see log for details")
			}
			return c.print(cmd.OutOrStdout(), map[string]bool{"deleted": true}, func(w io.Writer) {
				fmt.Fprintln(w, "deleted")
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory holding the object (default <prefix>/YYYY/MM)")
	return cmd
}

func (c *cli) readCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "read <url-or-path>",
		Short: "Fetch an image by public URL or local path",
		Long:  "Paths under the asset host are read from the bucket; anything else is read from local storage.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			data, err := c.app.Storage.Read(ctx, storage.ReadOptions{Path: args[0]})
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "file", "f", "", "Write to this file instead of stdout")
	return cmd
}

type planEntry struct {
	Tag    string `json:"tag"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

func (c *cli) planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the derivative sizes the active theme produces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, collisions := storage.PlanDerivatives(c.app.Themes.ImageSizes())

			entries := make([]planEntry, 0, len(plan))
			for _, tag := range slices.Sorted(maps.Keys(plan)) {
				d := plan[tag]
				entries = append(entries, planEntry{Tag: tag, Width: d.Width, Height: d.Height})
			}
			for _, col := range collisions {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: size %q dropped, %q also maps to %s\n", col.Dropped, col.Kept, col.Tag)
			}
			return c.print(cmd.OutOrStdout(), entries, func(w io.Writer) {
				for _, e := range entries {
					fmt.Fprintf(w, "%-12s %dx%d\n", e.Tag, e.Width, e.Height)
				}
			})
		},
	}
}

// sniff detects the content type from the first bytes of the file at p.
func sniff(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	return http.DetectContentType(head[:n]), nil
}
