package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/idelchi/dirscan/internal/dirscan"
)

// noExtensionLabel is displayed for the bucket of files without an extension.
const noExtensionLabel = "(none)"

// TableOptions controls the table output.
type TableOptions struct {
	// Dirs ranks directories instead of files.
	Dirs bool
	// Color enables colored headings when the terminal supports it.
	Color bool
}

// PrintJSON outputs the report in JSON format.
func PrintJSON(report *dirscan.Report, writer io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintYAML outputs the report in YAML format.
func PrintYAML(report *dirscan.Report, writer io.Writer) error {
	enc := yaml.NewEncoder(writer)
	enc.SetIndent(2) //nolint:mnd // Two-space indent

	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding YAML output: %w", err)
	}

	return enc.Close()
}

// PrintPaths outputs the ranked files, or directories, one path per line,
// largest first.
func PrintPaths(report *dirscan.Report, dirs bool, writer io.Writer) error {
	list := report.TopFiles
	if dirs {
		list = report.TopDirs
	}

	for _, f := range list {
		if _, err := fmt.Fprintln(writer, f.Path); err != nil {
			return err
		}
	}

	return nil
}

// share formats size as a percentage of total.
func share(size, total int64) string {
	pct := 0.0
	if total > 0 {
		pct = 100.0 * float64(size) / float64(total)
	}

	return fmt.Sprintf("%.1f%%", pct)
}

// bytesOf formats a size in human-readable form.
func bytesOf(size int64) string {
	return humanize.IBytes(uint64(size)) //nolint:gosec // Sizes are never negative
}

// newTable creates a borderless, left-aligned table.
func newTable(writer io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(writer)
	if len(header) > 0 {
		table.SetHeader(header)
	}

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	return table
}

// PrintTable outputs the report in human-readable table format.
//
//nolint:forbidigo,funlen // This function prints output to the console.
func PrintTable(report *dirscan.Report, writer io.Writer, opts TableOptions) error {
	heading := color.New(color.Bold, color.FgCyan)
	if !opts.Color {
		heading.DisableColor()
	}

	section := func(title string) error {
		_, err := heading.Fprintf(writer, "\n%s\n", title)

		return err
	}

	// Summary
	if err := section("Summary:"); err != nil {
		return err
	}

	depth := strconv.Itoa(report.MaxDepth)
	if report.DepthLimit != dirscan.NoDepthLimit {
		depth += fmt.Sprintf(" (limit %d)", report.DepthLimit)
	}

	summary := newTable(writer)
	summary.AppendBulk([][]string{
		{"Root:", report.Root},
		{"Total entries:", strconv.FormatInt(report.TotalEntries, 10)},
		{"Files:", strconv.FormatInt(report.Files, 10)},
		{"Directories:", strconv.FormatInt(report.Dirs, 10)},
		{"Symlinks:", strconv.FormatInt(report.Symlinks, 10)},
		{"Other:", strconv.FormatInt(report.Others, 10)},
		{"Total size:", fmt.Sprintf("%s (%d bytes)", bytesOf(report.TotalBytes), report.TotalBytes)},
		{"Max depth:", depth},
	})

	if report.Largest != nil {
		summary.Append([]string{"Largest file:", fmt.Sprintf("'%s' %s", report.Largest.Path, bytesOf(report.Largest.Size))})
	}

	if report.Smallest != nil {
		summary.Append([]string{"Smallest file:", fmt.Sprintf("'%s' %s", report.Smallest.Path, bytesOf(report.Smallest.Size))})
	}

	if report.Filtered > 0 {
		summary.Append([]string{"Filtered:", strconv.FormatInt(report.Filtered, 10)})
	}

	summary.Append([]string{"Errors:", strconv.Itoa(len(report.Errors))})
	summary.Append([]string{"Elapsed:", report.Elapsed.String()})
	summary.Render()

	// Extension statistics
	if exts := report.Extensions(); len(exts) > 0 {
		if err := section("Extensions:"); err != nil {
			return err
		}

		if len(exts) > report.TopN {
			exts = exts[:report.TopN]
		}

		table := newTable(writer, "Ext", "Files", "Size", "Share")

		for _, ext := range exts {
			name := ext.Ext
			if name == dirscan.NoExtension {
				name = noExtensionLabel
			}

			table.Append([]string{
				name,
				strconv.FormatInt(ext.Count, 10),
				bytesOf(ext.Size),
				share(ext.Size, report.TotalBytes),
			})
		}

		table.Render()
	}

	// Depth distribution
	if err := section("Depths:"); err != nil {
		return err
	}

	depths := newTable(writer, "Depth", "Entries")
	for _, d := range report.Depths() {
		depths.Append([]string{strconv.Itoa(d), strconv.FormatInt(report.DepthCounts[d], 10)})
	}

	depths.Render()

	// Top files/directories
	title, ranked := "Top files:", report.TopFiles
	if opts.Dirs {
		title, ranked = "Top directories:", report.TopDirs
	}

	if len(ranked) > 0 {
		if err := section(title); err != nil {
			return err
		}

		table := newTable(writer)
		for i, f := range ranked {
			table.Append([]string{
				fmt.Sprintf("%d)", i+1),
				fmt.Sprintf("'%s'", f.Path),
				bytesOf(f.Size),
				share(f.Size, report.TotalBytes),
			})
		}

		table.Render()
	}

	if !opts.Dirs && len(report.OldestFiles) > 0 {
		if err := section("Oldest files:"); err != nil {
			return err
		}

		table := newTable(writer)
		for i, f := range report.OldestFiles {
			table.Append([]string{
				fmt.Sprintf("%d)", i+1),
				fmt.Sprintf("'%s'", f.Path),
				f.ModTime.Format("2006-01-02 15:04"),
			})
		}

		table.Render()
	}

	// Traversal errors
	if len(report.Errors) > 0 {
		if err := section("Errors:"); err != nil {
			return err
		}

		table := newTable(writer, "Path", "Reason")
		for _, e := range report.Errors {
			table.Append([]string{e.Path, e.Reason})
		}

		table.Render()
	}

	return nil
}
