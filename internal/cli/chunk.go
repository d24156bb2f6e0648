package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docrag/internal/chunker"
)

func newChunkCmd(a *app) *cobra.Command {
	var (
		file     string
		strategy string
		size     int
		overlap  int
	)
	cmd := &cobra.Command{
		Use:   "chunk",
		Short: "Print the chunks a document is split into",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocuments([]string{file})
			if err != nil {
				return err
			}
			opts := a.ingestOptions()
			if cmd.Flags().Changed("strategy") {
				opts.Strategy = chunker.Strategy(strategy)
			}
			if cmd.Flags().Changed("size") {
				opts.ChunkSize = size
			}
			if cmd.Flags().Changed("overlap") {
				opts.Overlap = overlap
			}
			c, err := chunker.New(opts.Strategy, opts.ChunkSize, opts.Overlap)
			if err != nil {
				return err
			}
			chunks, err := c.Chunk(text)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ch := range chunks {
				fmt.Fprintf(out, "[%d] %s\n", ch.Index, ch.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "document to chunk")
	cmd.Flags().StringVar(&strategy, "strategy", "", "chunking strategy: word or sentence")
	cmd.Flags().IntVar(&size, "size", 0, "units per chunk")
	cmd.Flags().IntVar(&overlap, "overlap", 0, "units shared by consecutive chunks")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
