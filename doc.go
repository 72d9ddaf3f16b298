// Package featsearch searches for generated programs whose structural
// features approach those of a target benchmark.
//
// A generative model is asked for variations of a seed program. Every output
// is decoded, passed through a feature extractor and scored by its distance
// to the current target. Outputs that improve on their parent are fed back to
// the model, generation by generation, until the search depth is reached or
// no better candidate turns up.
//
// # Quick Start
//
//	ctx := context.Background()
//	s, _ := featsearch.Open(ctx, cfg,
//	    httpgen.New("http://localhost:8080/generate"),
//	    tok, extractor.Mux{"GreweFeatures": grewe},
//	    target.DirLoader{Root: "./benchmarks"},
//	    corpus.Slice(seeds),
//	    featsearch.WithBlobStore(blobstore.NewLocalStore("./state")),
//	)
//	defer s.Close()
//
//	results, _ := s.RunAll(ctx)
//
// # Persistence
//
// The search state (feed queue, monitors, statistics, corpus position) and
// the target list are written to a BlobStore after every feed, so a stopped
// search resumes where it left off. Accepted candidates go to a
// recordstore.Store keyed by content hash and every evaluated candidate can
// be kept in a sink.SampleSink.
//
// # Interruption
//
// Cancelling the context passed to Run stops the search at the next round
// boundary. The feed in progress is put back and the next Run reports
// ErrInterrupted once.
package featsearch
