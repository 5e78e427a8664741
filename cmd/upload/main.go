package main

// Drive the document upload handshake from a terminal:
//   go run ./cmd/upload --user u1 --category resume ./cv.pdf
//   go run ./cmd/upload --user u1 --list
//   go run ./cmd/upload --download 42
//   go run ./cmd/upload --delete 42

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"trackjob-backend/internal/uploadclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "upload: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		apiURL   string
		token    string
		userID   string
		category string
		list     bool
		download int64
		remove   int64
		verbose  bool
	)
	flagSet := pflag.NewFlagSet("upload", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&apiURL, "api", envOr("TRACKJOB_API_URL", "http://localhost:3000"), "API base URL")
	flagSet.StringVar(&token, "token", os.Getenv("TRACKJOB_TOKEN"), "bearer token sent with API calls")
	flagSet.StringVarP(&userID, "user", "u", "", "owner id")
	flagSet.StringVarP(&category, "category", "c", "resume", "document category (resume or coverLetter)")
	flagSet.BoolVar(&list, "list", false, "list the owner's documents")
	flagSet.Int64Var(&download, "download", 0, "print a download URL for the document id")
	flagSet.Int64Var(&remove, "delete", 0, "delete the document id")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "print state transitions")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	client := uploadclient.New(apiURL)
	client.BearerToken = token

	switch {
	case list:
		if userID == "" {
			return errors.New("--user is required with --list")
		}
		docs, err := client.List(ctx, userID)
		if err != nil {
			return err
		}
		return printDocuments(stdout, docs)
	case download > 0:
		link, err := client.Download(ctx, download)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%s\t(expires in %ds)\n", link.FileName, link.DownloadURL, link.ExpiresIn)
		return nil
	case remove > 0:
		if err := client.Delete(ctx, remove); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted %d\n", remove)
		return nil
	}

	if flagSet.NArg() != 1 {
		return errors.New("expected exactly one file path")
	}
	if userID == "" {
		return errors.New("--user is required")
	}
	file, err := uploadclient.FileFromPath(flagSet.Arg(0))
	if err != nil {
		return err
	}

	up := uploadclient.NewUpload(client, userID, category)
	if verbose {
		up.OnChange(func(from, to uploadclient.State) {
			fmt.Fprintf(stderr, "%s -> %s\n", from, to)
		})
	}
	doc, err := up.Run(ctx, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "uploaded %s as document %d (%d bytes)\n", doc.Name, doc.ID, doc.Size)
	return nil
}

func printDocuments(w io.Writer, docs []uploadclient.Document) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tSIZE\tUPLOADED")
	for _, d := range docs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", d.ID, d.Type, d.Name, d.Size, d.UploadedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
