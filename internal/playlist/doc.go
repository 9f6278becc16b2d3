// Package playlist orders cached songs into ranked target sequences.
//
// Ranking is parameterized by two small function-shaped abstractions: a
// [DistanceMetric] measuring how far apart two feature vectors are, and a
// [RankingStrategy] deciding how candidates are ordered relative to the
// seed(s). The builder itself only does the glue: pool filtering,
// selection-order deduplication, and truncation.
package playlist
