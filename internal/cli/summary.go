package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"bizdash/internal/app"
	"bizdash/internal/config"
	"bizdash/internal/models"
	"bizdash/internal/scheduler"
	"bizdash/internal/services"
)

// openSourceFunc is replaced in tests.
var openSourceFunc = openSource

func openSource(cfg *config.Config) (services.ItemSource, func(), error) {
	db, err := app.OpenDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if db != nil {
			_ = db.Close()
		}
	}
	src, err := app.NewItemSource(cfg, db)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return src, closeDB, nil
}

func newSummaryCommand(load func() (*config.Config, error)) *cobra.Command {
	var (
		period     string
		assignedTo string
		search     string
		showItems  bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print due-date buckets and stats for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := models.ParseTimePeriod(period)
			if err != nil {
				return err
			}
			facets, err := scheduler.ParseFacets("", "", "", assignedTo, search)
			if err != nil {
				return err
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			opts, err := app.NewSchedulerOptions(cfg)
			if err != nil {
				return err
			}
			src, closeSrc, err := openSourceFunc(cfg)
			if err != nil {
				return err
			}
			defer closeSrc()

			opts.Period = p
			opts.Facets = facets
			svc := services.NewSchedulerService(src, opts)
			if err := svc.Refresh(cmd.Context()); err != nil {
				return err
			}
			pv := svc.Render(services.RenderOptions{View: models.ViewList, GroupByDueDate: true})
			printSummary(cmd.OutOrStdout(), pv, showItems)
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", string(models.PeriodWeek), "today|week|month|all")
	cmd.Flags().StringVar(&assignedTo, "assigned-to", "", "only items assigned to this user")
	cmd.Flags().StringVarP(&search, "search", "s", "", "title, description or tag substring")
	cmd.Flags().BoolVar(&showItems, "items", false, "list the items under each bucket")
	return cmd
}

func printSummary(w io.Writer, pv services.PageView, showItems bool) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed, color.Bold)

	_, _ = fmt.Fprintln(w, bold.Sprintf("Scheduler: %s", pv.Period))
	if pv.Rejected > 0 {
		_, _ = fmt.Fprintf(w, "%d malformed items skipped\n", pv.Rejected)
	}
	if pv.List == nil || pv.Stats == nil {
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Bucket"), bold.Sprint("Items"))
	for _, b := range scheduler.AllBuckets() {
		n := pv.List.BucketCounts[b]
		if b == scheduler.BucketOverdue && n > 0 {
			tbl.AddRow(red.Sprint(b.Title()), red.Sprint(n))
			continue
		}
		tbl.AddRow(b.Title(), n)
	}
	tbl.RightAlign(1)
	_, _ = fmt.Fprintln(w, tbl)

	st := uitable.New()
	st.Separator = "  "
	st.AddRow("Total", pv.Stats.Total)
	if pv.Stats.Overdue > 0 {
		st.AddRow(red.Sprint("Overdue items"), red.Sprint(pv.Stats.Overdue))
	} else {
		st.AddRow("Overdue items", pv.Stats.Overdue)
	}
	st.AddRow("Due today", pv.Stats.DueToday)
	st.AddRow("Due this week", pv.Stats.DueThisWeek)
	st.AddRow("Completed", fmt.Sprintf("%d%%", pv.Stats.CompletionRate))
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, st)

	if !showItems {
		return
	}
	for _, g := range pv.List.Groups {
		_, _ = fmt.Fprintln(w, "")
		_, _ = fmt.Fprintln(w, bold.Sprint(g.Title))
		rows := uitable.New()
		rows.Separator = "  "
		rows.MaxColWidth = 48
		for _, r := range g.Rows {
			rows.AddRow(r.Item.DueDate.Format(models.DateLayout), r.DisplayStatus, r.Item.Priority, r.Item.Title, r.Subtitle)
		}
		_, _ = fmt.Fprintln(w, rows)
	}
}
