package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thompsonoloko-droid/automation-e2e/cmd/e2e/runner"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/browser"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/suite"
)

func newReportersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reporters",
		Short: "List the available reporters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range runner.Reporters() {
				fmt.Fprintf(w, "%s\t%s\n", name, runner.ReporterHelp(name))
			}
			return w.Flush()
		},
	}
}

func newProjectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List the browser projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "NAME\tENGINE\tBROWSER\tDEVICE\n")
			for _, p := range browser.Projects() {
				name := p.Name
				if p.Name == a.cfg.Project {
					name += " *"
				}
				device := p.Device
				if device == "" {
					device = "desktop"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, p.Engine, p.Browser, device)
			}
			return w.Flush()
		},
	}
}

func newCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove artifacts and the HTML report of earlier runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if err := suite.CleanArtifacts(a.cfg); err != nil {
				return err
			}
			a.log.Info("cleaned",
				zap.String("artifacts", a.cfg.ArtifactsDir),
				zap.String("reports", a.cfg.ReportsDir))
			return nil
		},
	}
}
