package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/logger"
)

var statusJob int64

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recorded stream statuses for a job",
	Long: `Lists the stream status entities recorded for a job by the local
backend. The http backend does not support listing.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().Int64Var(&statusJob, "job", 0, "job id")
	_ = statusCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	if runtimeOpener == nil {
		return errors.New("runtime not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	rt, err := runtimeOpener(*settings)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", settings.Backend, err)
	}
	if rt.Close != nil {
		defer func() {
			if err := rt.Close(); err != nil {
				logger.Warn("closing backend: %v", err)
			}
		}()
	}
	if rt.Lister == nil {
		return fmt.Errorf("the %s backend cannot list statuses", rt.Backend)
	}

	statuses, err := rt.Lister.ListStreamStatuses(contextOrBackground(cmd), statusJob)
	if err != nil {
		return fmt.Errorf("failed to list statuses: %w", err)
	}

	if len(statuses) == 0 {
		cmd.Printf("No statuses recorded for job %d.\n", statusJob)
		return nil
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("Job %d", statusJob)))
	cmd.Println(statusTable(statuses).Render())
	return nil
}

func statusTable(statuses []domain.StreamStatus) *table.Table {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, []string{
			fmt.Sprint(s.AttemptNumber),
			streamLabel(s.Key()),
			string(s.JobType),
			runStateLabel(s.RunState),
			statusDetail(s),
			s.Transitioned().UTC().Format(time.RFC3339),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("ATTEMPT", "STREAM", "JOB TYPE", "RUN STATE", "DETAIL", "TRANSITIONED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 && row >= 0 && row < len(statuses) {
				return runStateStyle(statuses[row].RunState)
			}
			return cellStyle
		})
}

// statusDetail describes the incomplete cause or the quota reset.
func statusDetail(s domain.StreamStatus) string {
	if s.IncompleteRunCause != "" {
		return string(s.IncompleteRunCause)
	}
	if s.Metadata != nil && s.Metadata.QuotaReset != nil {
		return "quota resets " + time.UnixMilli(*s.Metadata.QuotaReset).UTC().Format(time.RFC3339)
	}
	return ""
}
