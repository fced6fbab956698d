package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-editor/internal/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		projectFlag string
		outputDir   string
		name        string
		frameRate   float64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a stored project as a CMX3600 edit decision list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := export.ValidateOutputDir(outputDir); err != nil {
				return err
			}
			project, m, err := ctx.loadModel(ctx.projectID(projectFlag))
			if err != nil {
				return err
			}
			if name == "" {
				name = project.Name
			}
			if frameRate <= 0 {
				frameRate = float64(cfg.FrameRate())
			}

			resp, err := export.Write(m, export.Request{
				ProjectName: name,
				Format:      "edl",
				FrameRate:   frameRate,
				OutputDir:   outputDir,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d events (%s) to %s\n", resp.EventCount, resp.Duration, resp.OutputPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectFlag, "project", "p", "", "Project id (defaults to the configured project)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory to write the .edl file into")
	cmd.Flags().StringVar(&name, "name", "", "Title and file name (defaults to the project name)")
	cmd.Flags().Float64Var(&frameRate, "fps", 0, "Frame rate for timecodes (defaults to the configured rate)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
