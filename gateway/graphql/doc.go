// Package graphql serves the catalog over GraphQL.
//
// The schema in schema.graphql is executed with graph-gophers/graphql-go
// against thin bindings over package resolver. Sibling fields resolve
// concurrently, bounded by Config.MaxParallelism, and every request runs
// under Config.Timeout, which also bounds the backwards track scan.
//
// # Errors
//
// Field errors carry a code in extensions:
//
//	NOT_FOUND, INVALID_ARGUMENT, UNSUPPORTED_REPRESENTATION  caller errors
//	STORE_UNAVAILABLE                                        transient store failure, retryable
//	DATA_ERROR                                               a stored value could not be decoded
//	DEADLINE_EXCEEDED, CANCELLED                             the request context ended
//	INTERNAL_ERROR                                           anything else
//
// # Routes
//
//	POST|GET <path>  GraphQL endpoint (default /graphql)
//	GET /health      aggregated health of the store checks
//	GET /            GraphQL Playground, when enabled
//
// Every response carries an X-Request-ID header, taken from the request or
// generated, and the request logger in the context is tagged with it. When
// rate_limit is set, requests over it get 429 with Retry-After: 1.
//
// # Configuration
//
//	{
//	  "bind_address": ":8080",
//	  "path": "/graphql",
//	  "enable_playground": true,
//	  "enable_cors": true,
//	  "cors_origins": ["*"],
//	  "timeout": "30s",
//	  "max_query_depth": 10,
//	  "max_parallelism": 10,
//	  "rate_limit": 0,
//	  "rate_burst": 0
//	}
package graphql
