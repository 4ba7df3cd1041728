package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"fasttrack/internal/adapter/primary/tui"
	"fasttrack/internal/adapter/primary/web"
	"fasttrack/internal/adapter/secondary/export"
	"fasttrack/internal/adapter/secondary/metrics"
	"fasttrack/internal/core"
	"fasttrack/internal/domain"
	"fasttrack/internal/logging"
	"fasttrack/internal/usecase"
)

const timeLayout = time.RFC3339

func (a *app) newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List fasting methods (* marks the selected one)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			printMethods(cmd.OutOrStdout(), rt.tracker.Snapshot())
			return nil
		},
	}
}

func (a *app) newSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <method-id>",
		Short: "Select the fasting method used by the next fast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			s, err := rt.tracker.SelectMethod(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if _, ok := domain.FindMethod(s.Methods, s.SelectedMethodID); !ok {
				logging.Warnf("method %q is not in the catalogue; the timer falls back to %s", s.SelectedMethodID, s.Methods[0].ID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", s.SelectedMethodID)
			return nil
		},
	}
}

func (a *app) newStartCmd() *cobra.Command {
	var (
		methodFlag string
		atFlag     string
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a fast (no-op while one is active)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseAt(atFlag)
			if err != nil {
				return err
			}
			rt, err := a.runtime()
			if err != nil {
				return err
			}

			before := rt.tracker.Snapshot()
			s, err := rt.tracker.StartFast(cmd.Context(), usecase.StartInput{MethodID: methodFlag, StartTime: at})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if before.Fasting() {
				fmt.Fprintf(out, "Already fasting (%s since %s)\n", s.ActiveFast.MethodID, s.ActiveFast.StartTime.Format(timeLayout))
				return nil
			}
			fmt.Fprintf(out, "Started %s fast at %s\n", s.ActiveFast.MethodID, s.ActiveFast.StartTime.Format(timeLayout))
			return nil
		},
	}
	cmd.Flags().StringVar(&methodFlag, "method", "", "method id (default: the selected method)")
	cmd.Flags().StringVar(&atFlag, "at", "", "start time in RFC 3339, not the zero time (default: now)")
	return cmd
}

func (a *app) newEndCmd() *cobra.Command {
	var atFlag string
	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the active fast and record it (no-op when idle)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseAt(atFlag)
			if err != nil {
				return err
			}
			rt, err := a.runtime()
			if err != nil {
				return err
			}

			before := rt.tracker.Snapshot()
			s, err := rt.tracker.EndFast(cmd.Context(), usecase.EndInput{EndTime: at})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !before.Fasting() {
				fmt.Fprintln(out, "Not fasting")
				return nil
			}
			sess := s.History[0]
			fmt.Fprintf(out, "Ended %s fast after %s\n", sess.MethodID, domain.FormatHours(sess.DurationHours))
			return nil
		},
	}
	cmd.Flags().StringVar(&atFlag, "at", "", "end time in RFC 3339, not the zero time (default: now)")
	return cmd
}

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the timer for the active or selected method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), rt.tracker.Status(rt.tracker.Now()))
			return nil
		},
	}
}

func (a *app) newHistoryCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed fasts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			h := rt.tracker.History()
			out := cmd.OutOrStdout()

			if format == "table" {
				printHistory(out, h)
				return nil
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			data, err := export.Encode(h, f)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table|json|yaml")
	return cmd
}

func (a *app) newExportCmd() *cobra.Command {
	var (
		outPath string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the history report to a JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f export.Format
			if format != "" {
				parsed, err := export.ParseFormat(format)
				if err != nil {
					return err
				}
				f = parsed
			}
			exporter, err := export.NewFileExporter(outPath, f)
			if err != nil {
				return err
			}
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			report, err := rt.tracker.ExportHistory(cmd.Context(), exporter)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d fasts to %s\n", len(report.Sessions), exporter.Path())
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "destination file")
	cmd.Flags().StringVar(&format, "format", "", "json|yaml (default: from the file extension)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) newWatchCmd() *cobra.Command {
	var theme string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open the live fasting timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			if theme == "" {
				theme = rt.cfg.Theme
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return tui.Run(ctx, rt.tracker, tui.Options{Tick: rt.cfg.Tick, Theme: theme})
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "light|dark (default: ui.theme)")
	return cmd
}

func (a *app) newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API, websocket stream and status page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = rt.cfg.HTTPAddr
			}

			var metricsHandler http.Handler
			if rt.cfg.MetricsEnabled {
				metricsHandler = metrics.HTTPHandler(rt.registry)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			srv := web.NewServer(rt.tracker, web.Options{Addr: addr, Tick: rt.cfg.Tick, Metrics: metricsHandler})
			fmt.Fprintf(cmd.OutOrStdout(), "fasttrack running at http://%s\n", addr)

			go func() {
				select {
				case <-ctx.Done():
				case <-rt.manager.Done():
				}
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			return srv.Start()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default: http.addr)")
	return cmd
}

func parseAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at must be RFC 3339, e.g. 2026-03-01T20:00:00Z: %w", err)
	}
	if t.IsZero() {
		return time.Time{}, errors.New("--at must not be the zero time; omit it to use now")
	}
	return t, nil
}

func printMethods(w io.Writer, s core.State) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("", "ID", "NAME", "FAST", "EAT")
	for _, m := range s.Methods {
		mark := ""
		if m.ID == s.SelectedMethodID {
			mark = "*"
		}
		t.Row(mark, m.ID, m.Name, fmt.Sprintf("%gh", m.FastingHours), fmt.Sprintf("%gh", m.EatingHours))
	}
	fmt.Fprintln(w, t.Render())
}

func printStatus(w io.Writer, st usecase.Status) {
	p := st.Progress
	fmt.Fprintf(w, "Method:    %s (%gh fast / %gh eat)\n", st.Method.Name, st.Method.FastingHours, st.Method.EatingHours)
	if !st.Fasting {
		fmt.Fprintln(w, "State:     not fasting")
		fmt.Fprintf(w, "Target:    %s\n", domain.FormatHMS(p.TotalSeconds))
		return
	}
	fmt.Fprintf(w, "State:     fasting since %s\n", st.ActiveFast.StartTime.Format(timeLayout))
	fmt.Fprintf(w, "Elapsed:   %s\n", domain.FormatHMS(p.ClampedElapsedSeconds))
	fmt.Fprintf(w, "Remaining: %s\n", domain.FormatHMS(p.RemainingSeconds))
	fmt.Fprintf(w, "Progress:  %.0f%%\n", p.Ratio*100)
}

func printHistory(w io.Writer, h usecase.History) {
	if len(h.Sessions) == 0 {
		fmt.Fprintln(w, "No completed fasts yet")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "METHOD", "START", "END", "HOURS")
	for _, s := range h.Sessions {
		t.Row(shortID(s.ID), s.MethodID, s.StartTime.Format(timeLayout), s.EndTime.Format(timeLayout), domain.FormatHours(s.DurationHours))
	}
	fmt.Fprintln(w, t.Render())

	sum := h.Summary
	fmt.Fprintf(w, "Completed fasts: %d  total %s  longest %s  average %s  targets met %d\n",
		sum.Count,
		domain.FormatHours(sum.TotalHours),
		domain.FormatHours(sum.LongestHours),
		domain.FormatHours(sum.AverageHours),
		sum.TargetsMet)
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 && len(id) > 13 {
		return id[:i]
	}
	return id
}
