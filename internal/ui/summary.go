package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/temirov/glmigrate/internal/replication"
	"github.com/temirov/glmigrate/internal/transfer"
)

const (
	phaseColumnConstant              = "Phase"
	succeededColumnConstant          = "Succeeded"
	skippedColumnConstant            = "Skipped"
	failedColumnConstant             = "Failed"
	excludedColumnConstant           = "Excluded"
	replicationPhaseConstant         = "replicate"
	notApplicableConstant            = "-"
	failureLineTemplateConstant      = "%s %s\n"
	failureHeadingConstant           = "Failures:"
	renderTableErrorTemplateConstant = "unable to render summary: %w"
)

var (
	successColor  = color.New(color.FgHiGreen).SprintFunc()
	warningColor  = color.New(color.FgHiYellow).SprintFunc()
	failureColor  = color.New(color.FgHiRed).SprintFunc()
	failurePrefix = color.New(color.FgHiRed).Sprint("✗")
)

// Summary collects the outcome of each pipeline phase that ran.
type Summary struct {
	Replication *replication.Report
	Transfers   []transfer.Report
}

// SummaryPrinter writes a phase table followed by every failure.
type SummaryPrinter struct {
	writer io.Writer
}

// NewSummaryPrinter builds a printer for writer.
func NewSummaryPrinter(writer io.Writer) SummaryPrinter {
	return SummaryPrinter{writer: writer}
}

// Print renders summary.
func (printer SummaryPrinter) Print(summary Summary) error {
	table := tablewriter.NewTable(printer.writer,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header([]string{phaseColumnConstant, succeededColumnConstant, skippedColumnConstant, failedColumnConstant, excludedColumnConstant})

	var failureLines []string
	if summary.Replication != nil {
		replicationReport := *summary.Replication
		failureCount := len(replicationReport.SubtreeFailures) + len(replicationReport.ProjectFailures)
		created := len(replicationReport.CreatedGroups) + len(replicationReport.ReusedGroups) + len(replicationReport.CreatedProjects)
		if appendError := table.Append([]string{
			replicationPhaseConstant,
			colorCount(created, successColor),
			notApplicableConstant,
			colorCount(failureCount, failureColor),
			notApplicableConstant,
		}); appendError != nil {
			return fmt.Errorf(renderTableErrorTemplateConstant, appendError)
		}
		for _, subtreeFailure := range replicationReport.SubtreeFailures {
			failureLines = append(failureLines, subtreeFailure.Error())
		}
		for _, projectFailure := range replicationReport.ProjectFailures {
			failureLines = append(failureLines, projectFailure.Error())
		}
	}

	for _, report := range summary.Transfers {
		if appendError := table.Append([]string{
			report.Operation,
			colorCount(report.Count(transfer.TaskStatusSucceeded), successColor),
			colorCount(report.Count(transfer.TaskStatusSkipped), warningColor),
			colorCount(report.Count(transfer.TaskStatusFailed), failureColor),
			strconv.Itoa(len(report.Excluded)),
		}); appendError != nil {
			return fmt.Errorf(renderTableErrorTemplateConstant, appendError)
		}
		for _, failure := range report.Failures() {
			failureLines = append(failureLines, failure.Err.Error())
		}
	}

	if renderError := table.Render(); renderError != nil {
		return fmt.Errorf(renderTableErrorTemplateConstant, renderError)
	}

	if len(failureLines) == 0 {
		return nil
	}

	if _, writeError := fmt.Fprintln(printer.writer, failureHeadingConstant); writeError != nil {
		return writeError
	}
	for _, failureLine := range failureLines {
		if _, writeError := fmt.Fprintf(printer.writer, failureLineTemplateConstant, failurePrefix, failureLine); writeError != nil {
			return writeError
		}
	}
	return nil
}

// colorCount highlights non-zero counts.
func colorCount(count int, highlight func(a ...interface{}) string) string {
	text := strconv.Itoa(count)
	if count == 0 {
		return text
	}
	return highlight(text)
}
