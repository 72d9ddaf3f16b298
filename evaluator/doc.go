// Package evaluator turns raw generator outputs into scored candidates.
//
// A raw output is decoded to text, optionally validated, passed through the
// feature extractor and scored against the current target. Any failure along
// the way discards the output; the evaluator never returns partial candidates.
package evaluator
