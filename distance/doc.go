// Package distance computes normalized distances between feature vectors.
//
// A feature space is a named set of structural metrics with one normalization
// constant per feature. Built-in spaces:
//
//   - GreweFeatures: memory/compute ratios of OpenCL kernels
//   - InstCountFeatures: LLVM-IR instruction counts
//   - AutophaseFeatures: LLVM-IR control flow and instruction statistics
//
// # Usage
//
//	d, err := distance.Features(sample, target, distance.SpaceGrewe)
//	if errors.Is(err, distance.ErrMissingFeature) {
//	    // sample is infeasible, drop it
//	}
//
// Custom spaces can be added with Register.
package distance
