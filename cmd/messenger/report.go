package main

import (
	"fmt"
	"time"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-messenger/adapters/gocommand"
	messengercommand "github.com/goliatone/go-messenger/command"
	"github.com/goliatone/go-messenger/core"
	messengerquery "github.com/goliatone/go-messenger/query"
	"github.com/spf13/cobra"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build, save and browse iteration reports",
	}
	cmd.AddCommand(
		newReportBuildCommand(opts),
		newReportCreateCommand(opts),
		newReportListCommand(opts),
		newReportShowCommand(opts),
	)
	return cmd
}

func newReportBuildCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build [iteration-name]",
		Short: "Print a live report for an iteration without saving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := opts.loadConfig(ctx)
			if err != nil {
				return err
			}
			a, err := bootstrap(ctx, cfg, appNeeds{tracker: true})
			if err != nil {
				return err
			}
			defer a.Close()

			msg := messengerquery.BuildReportMessage{IterationName: args[0]}
			if err := msg.Validate(); err != nil {
				return err
			}
			detail, err := gocommand.Query[messengerquery.BuildReportMessage, core.ReportDetail](ctx, msg)
			if err != nil {
				return err
			}
			return renderReport(cmd.OutOrStdout(), detail, time.Now().UTC())
		},
	}
}

func newReportCreateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create [iteration-name]",
		Short: "Fetch an iteration and save it as a report snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := opts.loadConfig(ctx)
			if err != nil {
				return err
			}
			a, err := bootstrap(ctx, cfg, appNeeds{tracker: true, database: true})
			if err != nil {
				return err
			}
			defer a.Close()

			msg := messengercommand.CreateReportMessage{
				Request: core.CreateReportRequest{IterationName: args[0]},
			}
			if err := msg.Validate(); err != nil {
				return err
			}
			collector := gocmd.NewResult[core.IterationReport]()
			if err := a.facade.Commands().CreateReport.Execute(gocmd.ContextWithResult(ctx, collector), msg); err != nil {
				return err
			}
			report, ok := collector.Load()
			if !ok {
				return fmt.Errorf("report create: no report returned")
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created report %s for %s (%d stories)\n",
				report.ID, report.IterationName, len(report.IterationData.Stories))
			return err
		},
	}
}

func newReportListCommand(opts *rootOptions) *cobra.Command {
	var filter core.ReportFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved report snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := opts.loadConfig(ctx)
			if err != nil {
				return err
			}
			a, err := bootstrap(ctx, cfg, appNeeds{database: true})
			if err != nil {
				return err
			}
			defer a.Close()

			msg := messengerquery.ListReportsMessage{Filter: filter}
			if err := msg.Validate(); err != nil {
				return err
			}
			page, err := gocommand.Query[messengerquery.ListReportsMessage, core.ReportPage](ctx, msg)
			if err != nil {
				return err
			}
			return renderReportList(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().StringVarP(&filter.IterationName, "iteration", "i", "", "only reports for this iteration")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "page offset")
	return cmd
}

func newReportShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [report-id]",
		Short: "Print a saved report snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := opts.loadConfig(ctx)
			if err != nil {
				return err
			}
			a, err := bootstrap(ctx, cfg, appNeeds{database: true})
			if err != nil {
				return err
			}
			defer a.Close()

			msg := messengerquery.GetReportDetailMessage{ReportID: args[0]}
			if err := msg.Validate(); err != nil {
				return err
			}
			detail, err := gocommand.Query[messengerquery.GetReportDetailMessage, core.ReportDetail](ctx, msg)
			if err != nil {
				return err
			}
			return renderReport(cmd.OutOrStdout(), detail, detail.Report.CreatedAt)
		},
	}
}
