// Package cmd: fetch command.
// Downloads the raw HTML of a paper without converting it, for offline use
// with "arxiv2md convert file.html".
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gaurav-prasanna/arxiv2md/core/output"
	"github.com/gaurav-prasanna/arxiv2md/internal/logger"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <arxiv-id>",
	Short: "Download the HTML rendering of a paper",
	Long: `Fetch saves the HTML page arXiv renders for a paper as <id>.html.

Examples:
  arxiv2md fetch 2401.00001
  arxiv2md fetch https://arxiv.org/abs/2401.00001 --output_dir ./raw`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().String("output_dir", "", "Output directory (default: current directory)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("output_dir")
	if dir == "" {
		dir = cfg.OutputDir
	}
	writer, err := output.New(dir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	res, err := newHTTPFetcher().Fetch(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	// Old-style identifiers contain a slash.
	name := strings.ReplaceAll(res.ID, "/", "_")
	path, err := writer.WriteTo(filepath.Join(writer.OutputDir, name+".html"), []byte(res.HTML))
	if err != nil {
		return err
	}
	logger.Info("fetched paper", "id", res.ID, "size", humanize.Bytes(uint64(len(res.HTML))))
	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)
	return nil
}
