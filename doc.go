// Package genreguide is a read-only GraphQL server over a music genre
// taxonomy and a dated track catalog kept in a key-value store.
//
// # Layers
//
//	storage      read contract, key layout, dataset loading
//	  redisstore   Redis hashes, sets and lists
//	  kvstore      NATS JetStream KV bucket
//	  memstore     in-process maps
//	resolver     memoized fetches, colors, subgenre expressions, tracks
//	gateway/graphql  schema, bindings, error codes, HTTP server
//	config       layered JSON/YAML configuration with env overrides
//	health, metric   store probes and Prometheus metrics
//	cmd/genreguide   serve, load, schema and version commands
//
// # Data Model
//
// A subgenre is a hash at subgenre:<name> holding is_genre, genre, color,
// origins and subgenres. A track is a hash at track:<id> holding track,
// artist, label, release and subgenre. The list at date:YYYY-MM-DD holds the
// ids released that day. The sets subgenres and genres name every node and
// every top-level genre.
package genreguide
