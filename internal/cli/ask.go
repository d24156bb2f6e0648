package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(a *app) *cobra.Command {
	var (
		files       []string
		topK        int
		showSources bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ingest a document and answer one question about it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("question is required")
			}
			text, err := readDocuments(files)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("top-k") {
				a.cfg.Retrieval.TopK = topK
			}

			s, err := a.newSession(cmd.Context(), text, a.ingestOptions())
			if err != nil {
				return err
			}
			ans, err := s.ask(cmd.Context(), question)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ans.Text)
			if showSources {
				for i, c := range ans.UsedChunks {
					fmt.Fprintf(out, "\n--- source %d (chunk #%d)\n%s\n", i+1, c.Index, c.Text)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "document file(s); multiple files are concatenated")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of chunks to retrieve")
	cmd.Flags().BoolVar(&showSources, "sources", false, "print the chunks the answer was grounded on")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
