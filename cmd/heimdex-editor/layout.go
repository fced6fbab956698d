package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

func newLayoutCommand(ctx *commandContext) *cobra.Command {
	var projectFlag string

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print every track of a stored project",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, m, err := ctx.loadModel(ctx.projectID(projectFlag))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s), %s total\n", project.Name, project.ID, formatSeconds(m.TotalDuration()))
			fmt.Fprintln(out, renderTable(
				[]string{"Track", "ID", "Start", "End", "Label"},
				layoutRows(m),
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectFlag, "project", "p", "", "Project id (defaults to the configured project)")
	return cmd
}

var trackTitle = cases.Title(language.Und)

// layoutRows lists video clips in playback order, then every other track in
// storage order.
func layoutRows(m *timeline.Model) [][]string {
	var rows [][]string
	for _, p := range m.Layout() {
		rows = append(rows, row(timeline.TrackVideo, p.Segment.ID, p.Start, p.End, p.Segment.Name))
	}
	for _, kind := range timeline.TrackKinds[1:] {
		for _, it := range m.Items(kind) {
			start, end, _ := timeline.Bounds(it)
			rows = append(rows, row(kind, it.ItemID(), start, end, itemLabel(it)))
		}
	}
	return rows
}

func row(kind timeline.TrackKind, id string, start, end float64, label string) []string {
	return []string{trackTitle.String(string(kind)), id, formatSeconds(start), formatSeconds(end), label}
}

func itemLabel(it timeline.Item) string {
	switch v := it.(type) {
	case timeline.SfxCue:
		return v.SourceRef
	case timeline.Subtitle:
		return v.Text
	case timeline.Overlay:
		return v.Text
	}
	return ""
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 2, 64) + "s"
}
