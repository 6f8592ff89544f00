// Package config loads the genreguide server configuration.
//
// Configuration is built in layers: Default, then each file added with
// AddLayer (JSON or YAML, later files win field by field), then environment
// overrides prefixed with GENREGUIDE_. Keys ending in _timeout, _interval or
// _wait accept duration strings such as "5s".
//
// # Basic Usage
//
//	loader := config.NewLoader()
//	loader.AddLayer("configs/genreguide.yaml")
//	loader.AddLayer("configs/production.yaml")
//
//	cfg, err := loader.Load()
//	if err != nil {
//		return err
//	}
//
// # File Layout
//
//	store:
//	  backend: redis            # redis | nats | memory
//	  dataset: catalog.yaml     # required for memory, seeds the others
//	  redis:
//	    addr: redis:6379
//	    db: 0
//	    pool_size: 10
//	    dial_timeout: 5s
//	  nats:
//	    url: nats://localhost:4222
//	    bucket: genreguide
//	cache:
//	  fetch:      {enabled: true, max_size: 8192}
//	  hex_colors: {enabled: true, max_size: 128}
//	  tokens:     {enabled: true, max_size: 64}
//	graphql:
//	  bind_address: ":8080"
//	  path: /graphql
//	  timeout: 30s
//	  rate_limit: 200           # requests per second, 0 disables
//	metrics:
//	  enabled: true
//	  port: 9090
//	health:
//	  check_interval: 15s
//	  check_timeout: 2s
//
// # Environment
//
// GENREGUIDE_STORE_BACKEND, GENREGUIDE_DATASET, GENREGUIDE_REDIS_ADDR,
// GENREGUIDE_REDIS_PASSWORD, GENREGUIDE_REDIS_DB, GENREGUIDE_NATS_URL,
// GENREGUIDE_NATS_BUCKET, GENREGUIDE_NATS_USERNAME, GENREGUIDE_NATS_PASSWORD,
// GENREGUIDE_NATS_TOKEN, GENREGUIDE_GRAPHQL_BIND_ADDRESS and
// GENREGUIDE_METRICS_PORT override the matching fields. Secrets belong here
// rather than in files; Config.String redacts them.
package config
