package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/targus/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckWatch bool
)

// errUnhealthy makes a failed one-shot check exit non-zero
var errUnhealthy = errors.New("backend is unhealthy")

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check whether the backend is reachable and healthy",
	Long: `Check the health of the backend by calling GET /health.

A 2xx response is healthy unless its body says otherwise
(status "unhealthy" or healthy: false). A non-2xx response or a network
failure is unhealthy.

With --watch the check repeats every 30 seconds (health.interval) and each
state change is printed until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 Backend Health Check"))
		fmt.Fprintf(out, "   URL: %s\n", appConfig.APIURL)
		fmt.Fprintln(out)

		poller := internal.NewHealthPoller(newClient(), appConfig.Health.Interval, nil)

		if !healthcheckWatch {
			status := poller.Check(ctx)
			displayHealth(out, status, time.Now())
			if status.State != internal.HealthHealthy {
				return errUnhealthy
			}
			return nil
		}

		poller.OnChange(func(s internal.HealthStatus) {
			if s.State == internal.HealthChecking {
				return
			}
			displayHealth(out, s, time.Now())
		})
		if err := poller.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		poller.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckWatch, "watch", false, "Keep checking until interrupted")
}

func displayHealth(w io.Writer, s internal.HealthStatus, now time.Time) {
	switch s.State {
	case internal.HealthHealthy:
		fmt.Fprintln(w, successStyle.Render("✅ Backend healthy"))
	case internal.HealthUnhealthy:
		fmt.Fprintln(w, errorStyle.Render("❌ Backend unhealthy"))
		if text := s.ErrorText(); text != "" {
			fmt.Fprintf(w, "   %s\n", text)
		}
	default:
		fmt.Fprintln(w, warningStyle.Render("⏳ Checking..."))
	}
	fmt.Fprintf(w, "   Last checked: %s\n", s.FormatLastChecked(now))
}
