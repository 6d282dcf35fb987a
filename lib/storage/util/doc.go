// Package util provides small statistical helpers used by storage backends to
// report estimates about their state without performing expensive full scans.
//
//   - Stats / DistributionStats: summary statistics over a set of samples and a
//     quality score describing how evenly data is spread (e.g. across shards)
//   - SizeHistogram: a lock-free histogram with exponential buckets from bytes
//     to gigabytes, used to estimate typical value sizes from a sample
package util
