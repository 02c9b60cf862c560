package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/goliatone/go-messenger/core"
)

// renderReport writes the console iteration report. Section order and labels
// follow the report page.
func renderReport(w io.Writer, detail core.ReportDetail, generatedAt time.Time) error {
	p := &printer{w: w}
	analysis := detail.Analysis
	summary := detail.Summary

	p.linef("Iteration: %s", analysis.Iteration.Name)
	p.linef("Start Date: %s", analysis.Iteration.StartDate)
	p.linef("End Date: %s", analysis.Iteration.EndDate)
	p.linef("Report generated at: %s", generatedAt.Format(time.RFC3339))

	p.linef("High comment stories")
	for _, ranked := range summary.HighCommentStories {
		p.linef("%s: %d", storyRef(ranked.Story), ranked.Count)
	}

	p.linef("")
	p.linef("High Rejections")
	for _, ranked := range summary.HighUATStories {
		p.linef("%s: %d", storyRef(ranked.Story), ranked.Count)
	}

	p.linef("")
	p.linef("UAT Rejected at Some Point")
	for _, id := range analysis.RejectedUATStories {
		story, ok := analysis.Stories[id]
		if !ok {
			story = core.Story{ID: id}
		}
		p.linef("%s", storyRef(story))
	}

	p.linef("")
	p.linef("Added after start")
	for _, late := range summary.AddedAfterStart {
		p.linef("%s: %s", storyRef(late.Story), late.AddedAt)
	}

	p.linef("")
	p.linef("Number of Tickets by Team")
	p.linef("CS-ENT: %d", summary.StoriesByTeam.Enterprise)
	p.linef("CS-SMB: %d", summary.StoriesByTeam.SMB)
	p.linef("Other: %d", summary.StoriesByTeam.Other)

	p.linef("")
	p.linef("Number of Points by Team")
	p.linef("CS-ENT: %s", formatPoints(summary.PointsByTeam.Enterprise))
	p.linef("CS-SMB: %s", formatPoints(summary.PointsByTeam.SMB))
	p.linef("Other: %s", formatPoints(summary.PointsByTeam.Other))

	p.linef("")
	p.linef("Number of Tickets by State")
	p.linef("Not Started: %d", summary.StoriesByState.NotStarted)
	p.linef("Started: %d", summary.StoriesByState.Started)
	p.linef("Completed: %d", summary.StoriesByState.Completed)

	p.linef("")
	p.linef("Number of Points by State")
	p.linef("Not Started: %s", formatPoints(summary.PointsByState.NotStarted))
	p.linef("Started: %s", formatPoints(summary.PointsByState.Started))
	p.linef("Completed: %s", formatPoints(summary.PointsByState.Completed))
	return p.err
}

func renderReportList(w io.Writer, page core.ReportPage) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITERATION\tSTORIES\tCREATED")
	for _, report := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			report.ID,
			report.IterationName,
			len(report.IterationData.Stories),
			report.CreatedAt.UTC().Format(time.RFC3339),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d of %d reports\n", len(page.Items), page.Total)
	return err
}

func storyRef(story core.Story) string {
	if story.AppURL == "" {
		return "SC-" + story.ID.String()
	}
	return "SC-" + story.ID.String() + " - " + story.AppURL
}

func formatPoints(points float64) string {
	return strconv.FormatFloat(points, 'f', -1, 64)
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) linef(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}
