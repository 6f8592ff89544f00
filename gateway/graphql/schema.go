package graphql

import (
	_ "embed"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/resolver"
)

// SDL is the schema served by the gateway.
//
//go:embed schema.graphql
var SDL string

// LoadSDL parses and validates SDL with gqlparser, which reports errors with
// their source position.
func LoadSDL() (*ast.Schema, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: SDL})
	if err != nil {
		return nil, errors.WrapInvalid(err, "Schema", "LoadSDL", "validate schema")
	}
	return schema, nil
}

// NewSchema binds SDL onto r for execution.
func NewSchema(r *resolver.Resolver, cfg Config) (*graphqlgo.Schema, error) {
	opts := []graphqlgo.SchemaOpt{
		graphqlgo.MaxDepth(cfg.MaxQueryDepth),
		graphqlgo.MaxParallelism(cfg.MaxParallelism),
	}
	schema, err := graphqlgo.ParseSchema(SDL, &queryResolver{r: r}, opts...)
	if err != nil {
		return nil, errors.WrapFatal(err, "Schema", "NewSchema", "bind resolvers")
	}
	return schema, nil
}
