// Package repositories provides the persistence layer for the library cache.
//
// [SongRepository] maps [models.Song] onto the song and feature tables.
// Feature vectors are written as one row per dimension; upserts replace the
// whole vector inside a single transaction so a reader never observes a
// partial vector.
package repositories
