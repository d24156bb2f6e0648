package cli

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docrag/internal/config"
	"docrag/internal/logging"
	"docrag/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "tui <file> [file...]",
		Short: "Ingest documents and ask questions interactively",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if logFile == "" {
				logFile = defaultTUILogFile()
			}
			if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
				return err
			}
			_ = a.logger.Sync()
			a.logger = logging.New(tuiLogConfig(a.cfg.Log, logFile))

			text, err := readDocuments(args)
			if err != nil {
				return err
			}
			s, err := a.newSession(cmd.Context(), text, a.ingestOptions())
			if err != nil {
				return err
			}

			title := filepath.Base(args[0])
			if len(args) > 1 {
				title = fmt.Sprintf("%s (+%d more)", title, len(args)-1)
			}
			title = fmt.Sprintf("%s  %d chunks", title, s.result.ChunkCount)

			a.logger.Info("starting tui", zap.String("log_file", logFile))
			m := tui.New(cmd.Context(), s.ask, title, s.result.Summary)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "where logs go while the TUI owns the terminal (default: user cache dir)")
	return cmd
}

// tuiLogConfig replaces terminal outputs with path; Bubble Tea draws on the
// same terminal.
func tuiLogConfig(cfg config.LogConfig, path string) config.LogConfig {
	outputs := make([]string, 0, len(cfg.OutputPaths)+1)
	redirected := len(cfg.OutputPaths) == 0
	for _, o := range cfg.OutputPaths {
		if o == "stderr" || o == "stdout" {
			redirected = true
			continue
		}
		outputs = append(outputs, o)
	}
	if redirected {
		outputs = append(outputs, path)
	}
	cfg.OutputPaths = outputs
	return cfg
}

func defaultTUILogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "docrag", "tui.log")
}
