// Package cmd: convert command.
// This is the main command that orchestrates the pipeline:
// fetch → convert → render → write, for every input given.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gaurav-prasanna/arxiv2md/batch"
	"github.com/gaurav-prasanna/arxiv2md/core"
	"github.com/gaurav-prasanna/arxiv2md/core/fetch"
	"github.com/gaurav-prasanna/arxiv2md/core/output"
	"github.com/gaurav-prasanna/arxiv2md/core/pipeline"
	"github.com/gaurav-prasanna/arxiv2md/core/render"
	"github.com/gaurav-prasanna/arxiv2md/internal/logger"
	"github.com/spf13/cobra"
)

// Flag variables.
var (
	flagPDF      bool
	flagMarkdown bool
	flagJSON     bool
	flagOutput   string
)

var convertCmd = &cobra.Command{
	Use:   "convert <arxiv-id | file.html>...",
	Short: "Convert arXiv papers to Markdown, JSON or PDF",
	Long: `Convert fetches the HTML rendering of each paper (or reads a saved page),
turns its math into LaTeX, strips the page down to its content and writes
the result named after the paper title.

Examples:
  arxiv2md convert 2401.00001
  arxiv2md convert arXiv:2401.00001v2 --json --chunk_size 400
  arxiv2md convert paper.html -o paper.md
  arxiv2md convert 2401.00001 2312.12345 --pdf --output_dir ./papers`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	f := convertCmd.Flags()
	// Output format flags (mutually exclusive, Markdown by default).
	f.BoolVar(&flagMarkdown, "markdown", false, "Output Markdown (default)")
	f.BoolVar(&flagJSON, "json", false, "Output structured JSON")
	f.BoolVar(&flagPDF, "pdf", false, "Output PDF")
	convertCmd.MarkFlagsMutuallyExclusive("markdown", "json", "pdf")

	f.StringVarP(&flagOutput, "output", "o", "", "Output file (single input only)")
	f.String("output_dir", "", "Output directory (default: current directory)")
	f.Bool("frontmatter", false, "Prepend YAML metadata to Markdown output")
	f.Int("chunk_size", 0, "Add retrieval chunks of about this many words to JSON output")
	f.Int("max_name_length", 0, "Longest derived filename (default 80)")
	f.Int("workers", 0, "Papers converted in parallel (default 4)")

	bindFlags(f, map[string]string{
		"output_dir":      "output_dir",
		"frontmatter":     "frontmatter",
		"chunk_size":      "chunk_size",
		"max_name_length": "max_name_length",
		"workers":         "workers",
	})
}

func runConvert(cmd *cobra.Command, args []string) error {
	if flagOutput != "" && len(args) > 1 {
		return fmt.Errorf("--output takes a single input (got %d)", len(args))
	}

	renderer, err := render.For(selectFormat(), render.Options{
		Frontmatter: cfg.Frontmatter,
		ChunkSize:   cfg.ChunkSize,
	})
	if err != nil {
		return err
	}

	writer, err := output.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	fetcher := fetch.NewAuto(newHTTPFetcher())
	converter := pipeline.New(pipeline.WithMaxNameLength(cfg.MaxNameLength))

	queue := batch.NewQueue(sourceKey)
	for _, arg := range args {
		if !queue.Add(arg) {
			logger.Debug("skipping duplicate input", "source", arg)
		}
	}

	outcomes := batch.Run(cmd.Context(), queue, cfg.Workers, func(ctx context.Context, source string) (string, error) {
		return convertOne(ctx, source, fetcher, converter, renderer, writer)
	})

	var errCount int
	for _, o := range outcomes {
		if o.Err != nil {
			if fetch.IsNoHTML(o.Err) {
				logger.Error("no HTML rendering on arXiv; only the PDF exists", "source", o.Item)
			} else {
				logger.Error("conversion failed", "source", o.Item, "error", o.Err)
			}
			errCount++
			continue
		}
		fmt.Fprintf(os.Stdout, "✓ Written: %s\n", o.Value)
	}

	if errCount > 0 {
		return fmt.Errorf("%d/%d papers failed", errCount, len(outcomes))
	}
	return nil
}

// convertOne runs a single input through the full pipeline and returns the
// written path.
func convertOne(
	ctx context.Context,
	source string,
	fetcher core.Fetcher,
	converter *pipeline.Converter,
	renderer core.Renderer,
	writer *output.Writer,
) (string, error) {
	// 1. Fetch
	res, err := fetcher.Fetch(ctx, source)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	id := res.ID
	if id == "" {
		id = source
	}

	// 2. Convert to Markdown
	result, err := converter.Convert(core.Document{Source: id, HTML: res.HTML})
	if err != nil {
		return "", fmt.Errorf("convert: %w", err)
	}
	for _, w := range result.Warnings {
		logger.Warn("conversion warning", "source", source, "stage", w.Stage, "error", w.Err)
	}

	// 3. Render to output format
	meta := core.PaperMetadata{
		ID:        res.ID,
		Source:    res.URL,
		Title:     result.Title,
		Language:  result.Language,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		Warnings:  len(result.Warnings),
	}
	data, err := renderer.Render(result.Markdown, meta)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}

	// 4. Write
	if flagOutput != "" {
		return writer.WriteTo(flagOutput, data)
	}
	return writer.Write(result.Filename, data, renderer.Extension())
}

// selectFormat lets a format flag override the configured format.
func selectFormat() render.Format {
	switch {
	case flagJSON:
		return render.FormatJSON
	case flagPDF:
		return render.FormatPDF
	case flagMarkdown:
		return render.FormatMarkdown
	}
	return render.Format(cfg.Format)
}

func newHTTPFetcher() *fetch.HTTPFetcher {
	return fetch.New(
		fetch.WithBaseURL(cfg.BaseURL),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
	)
}

// sourceKey identifies inputs that name the same paper or file.
func sourceKey(source string) string {
	if fetch.IsLocalPath(source) {
		if abs, err := filepath.Abs(source); err == nil {
			return abs
		}
		return source
	}
	if id, err := fetch.NormalizeID(source); err == nil {
		return id
	}
	return source
}
