// Package model defines the core types shared by every featsearch package.
//
// # Search Types
//
//   - Feed: a search state pending expansion (input tokens, features, score, generation)
//   - Candidate: one generated, evaluated and scored output of a feed
//   - Target: a benchmark whose feature vector the search is steering towards
//
// Feeds and candidates are values. A new Feed is built whenever a candidate is
// promoted, the parent is never mutated.
//
//	child := model.NewFeed(c.Tokens, c.Features, c.Score, feed.Generation+1)
package model
