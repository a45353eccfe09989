package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/gallery/internal/app"
	"github.com/five82/gallery/internal/config"
	"github.com/five82/gallery/internal/devserver"
	"github.com/five82/gallery/internal/form"
	"github.com/five82/gallery/internal/gallery"
	"github.com/five82/gallery/internal/logging"
	"github.com/five82/gallery/internal/logtail"
	"github.com/five82/gallery/internal/upload"
)

func newListCommand(flags *rootFlags) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print images from the gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options()
			opts.Console = cmd.ErrOrStderr()
			svc, err := app.Bootstrap(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			limit := 1
			if all {
				limit = 0
			}
			items, err := svc.Paginator.LoadAll(cmd.Context(), gallery.ImagesKey, limit)
			if err != nil {
				return err
			}

			if err := printItems(cmd.OutOrStdout(), items); err != nil {
				return err
			}
			if svc.Paginator.HasMore(gallery.ImagesKey) {
				fmt.Fprintln(cmd.OutOrStdout(), "more images available; run with --all")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "follow cursors until the last page")
	return cmd
}

func printItems(w io.Writer, items []gallery.Item) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "no images")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDESCRIPTION\tCREATED\tURL")
	for _, item := range items {
		created := ""
		if ts := item.CreatedAt(); !ts.IsZero() {
			created = ts.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", item.ID, item.Title, item.Description, created, item.URL)
	}
	return tw.Flush()
}

func newUploadCommand(flags *rootFlags) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Validate and upload an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options()
			opts.Console = cmd.ErrOrStderr()
			svc, err := app.Bootstrap(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			in := form.Input{Title: title, Description: description}
			file, err := upload.FromPath(args[0])
			if err != nil {
				return err
			}
			in.Image = &file

			item, err := svc.Submitter.Submit(cmd.Context(), in)
			var verrs form.Errors
			if errors.As(err, &verrs) {
				rules := svc.Submitter.Rules()
				for _, v := range verrs {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", rules.Message(v))
				}
				return fmt.Errorf("upload rejected: %d invalid field(s)", len(verrs))
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%s)\n", item.Title, item.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "image title")
	cmd.Flags().StringVar(&description, "description", "", "image description")
	return cmd
}

func newDevserverCommand() *cobra.Command {
	var (
		addr     string
		pageSize int
		level    string
	)

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run an in-memory gallery backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closer, err := logging.New(logging.Options{Level: level, Console: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer closer.Close()

			srv := devserver.New(devserver.Options{Addr: addr, PageSize: pageSize, Logger: logger})
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":3000", "listen address")
	cmd.Flags().IntVar(&pageSize, "page-size", 6, "images per page")
	cmd.Flags().StringVar(&level, "log-level", "info", "log level")
	return cmd
}

func newLogsCommand(flags *rootFlags) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the gallery log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			raw, err := logtail.Read(cfg.LogFile, lines)
			if err != nil {
				return err
			}
			for _, line := range logtail.FormatLines(raw) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 100, "number of lines")
	return cmd
}
