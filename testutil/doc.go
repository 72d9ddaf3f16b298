// Package testutil provides fakes for the search collaborators.
//
// This package is intended for use in tests only. Text is the unit of
// exchange: ByteTokenizer maps bytes to tokens, ScoreExtractor reads a
// number from the text as the single feature F2 of Space, and TableGenerator
// answers every input with outputs looked up by the input text.
//
//	gen := testutil.NewTableGenerator(map[string][]string{
//		"9": {"0.9", "0.4", "1.2"},
//	})
//
// With a target feature F2 of 0 the score of a candidate equals the number it
// decodes to.
package testutil
