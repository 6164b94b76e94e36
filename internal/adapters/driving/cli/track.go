package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driving"
	"github.com/custodia-labs/streamtrack/internal/logger"
)

var trackFlags struct {
	source      string
	destination string
	workspace   string
	connection  string
	job         int64
	attempt     int
	reset       bool
	metricsFile string
}

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Track a sync from recorded connector output",
	Long: `Reads the JSON lines emitted by a source connector, and optionally the
lines echoed back by the destination, and reports the run-state of every
stream to the configured backend.

Use "-" as the source to read from standard input.`,
	Args: cobra.NoArgs,
	RunE: runTrack,
}

func init() {
	flags := trackCmd.Flags()
	flags.StringVarP(&trackFlags.source, "source", "s", "", "source connector output (file or -)")
	flags.StringVarP(&trackFlags.destination, "destination", "d", "", "destination connector output (file)")
	flags.StringVar(&trackFlags.workspace, "workspace", "", "workspace id (generated if empty)")
	flags.StringVar(&trackFlags.connection, "connection", "", "connection id (generated if empty)")
	flags.Int64Var(&trackFlags.job, "job", 0, "job id")
	flags.IntVar(&trackFlags.attempt, "attempt", 0, "attempt number")
	flags.BoolVar(&trackFlags.reset, "reset", false, "the job is a reset")
	flags.StringVar(&trackFlags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	_ = trackCmd.MarkFlagRequired("source")
	_ = trackCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, _ []string) error {
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
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	source, closeSource, err := openInput(cmd, trackFlags.source)
	if err != nil {
		return err
	}
	defer closeSource()

	var destination io.Reader
	if trackFlags.destination != "" {
		dest, closeDest, err := openInput(cmd, trackFlags.destination)
		if err != nil {
			return err
		}
		defer closeDest()
		destination = dest
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

	sync := syncFromFlags()
	logger.Section("track")
	logger.Info("tracking %s via %s", sync, rt.Backend)

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt)
	defer stop()

	result, replayErr := rt.Replay.Replay(ctx, driving.ReplayRequest{
		Sync:        sync,
		Source:      source,
		Destination: destination,
	})
	if result != nil {
		printTrackResult(cmd, sync, result)
	}
	if trackFlags.metricsFile != "" && rt.Metrics != nil {
		if err := rt.Metrics.WriteTextfile(trackFlags.metricsFile); err != nil {
			logger.Warn("writing metrics: %v", err)
		}
	}
	if replayErr != nil {
		return fmt.Errorf("track failed: %w", replayErr)
	}
	if result.TrackErrors > 0 {
		return fmt.Errorf("track finished with %d notification errors", result.TrackErrors)
	}
	return nil
}

func syncFromFlags() domain.SyncContext {
	sync := domain.SyncContext{
		WorkspaceID:  trackFlags.workspace,
		ConnectionID: trackFlags.connection,
		JobID:        trackFlags.job,
		Attempt:      trackFlags.attempt,
		IsReset:      trackFlags.reset,
	}
	if sync.WorkspaceID == "" {
		sync.WorkspaceID = uuid.NewString()
	}
	if sync.ConnectionID == "" {
		sync.ConnectionID = uuid.NewString()
	}
	return sync
}

// openInput opens path, or the command's stdin for "-".
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func printTrackResult(cmd *cobra.Command, sync domain.SyncContext, result *driving.ReplayResult) {
	cmd.Println(titleStyle.Render(fmt.Sprintf("Job %d attempt %d", sync.JobID, sync.Attempt)))
	cmd.Println(mutedStyle.Render(fmt.Sprintf("%s %s", sync.JobType(), sync)))
	cmd.Println()

	if len(result.Streams) == 0 {
		cmd.Println("No streams observed.")
	} else {
		cmd.Println(streamTable(result.Streams).Render())
	}
	cmd.Println()

	cmd.Printf("Messages tracked: %d\n", result.MessagesTracked)
	if result.TrackErrors > 0 {
		cmd.Printf("Notification errors: %d\n", result.TrackErrors)
	}
	if result.Failed {
		cmd.Println("A reader failed; open streams were marked INCOMPLETE.")
	}
}

func streamTable(entries []domain.StreamStatusEntry) *table.Table {
	rows := make([][]string, 0, len(entries))
	states := make([]domain.RunState, 0, len(entries))
	for _, entry := range entries {
		checkpoint := "-"
		if entry.Value.LatestStateID != nil {
			checkpoint = strconv.FormatInt(*entry.Value.LatestStateID, 10)
		}
		rows = append(rows, []string{
			streamLabel(entry.Key),
			runStateLabel(entry.Value.RunState),
			checkpoint,
			yesNo(entry.Value.SourceComplete),
			yesNo(!entry.Value.StreamEmpty),
		})
		states = append(states, entry.Value.RunState)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("STREAM", "RUN STATE", "CHECKPOINT", "SOURCE DONE", "RECORDS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 && row >= 0 && row < len(states) {
				return runStateStyle(states[row])
			}
			return cellStyle
		})
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// contextOrBackground guards commands executed without a context.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
