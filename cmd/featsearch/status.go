package main

import (
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hupe1980/featsearch/config"
	"github.com/hupe1980/featsearch/engine"
	"github.com/hupe1980/featsearch/model"
)

type status struct {
	Saved      bool            `json:"saved"`
	Target     string          `json:"target"`
	Remaining  int             `json:"remaining_targets"`
	Queue      int             `json:"queued_feeds"`
	Scores     []model.Score   `json:"queued_scores,omitempty"`
	Restarts   int             `json:"corpus_restarts"`
	CompRate   map[int]float64 `json:"compile_rate,omitempty"`
	Checkpoint string          `json:"checkpoint"`
}

func newStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the persisted search state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			cp, err := openCheckpointer(cmd.Context(), cfg.State)
			if err != nil {
				return err
			}

			var st engine.SearchState
			found, err := cp.Load(cmd.Context(), engine.StateBlob, &st)
			if err != nil {
				return err
			}
			out := status{Saved: found, Checkpoint: engine.StateBlob}
			if found {
				out.Target = st.Target.Current
				out.Remaining = st.Target.Remaining
				out.Queue = len(st.Queue)
				out.Restarts = st.Corpus.Restarts
				for _, f := range st.Queue {
					out.Scores = append(out.Scores, f.InputScore)
				}
				if len(st.Stats) > 0 {
					out.CompRate = make(map[int]float64, len(st.Stats))
					for gen, s := range st.Stats {
						out.CompRate[gen] = s.CompileRate()
					}
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
