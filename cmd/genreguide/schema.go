package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/navith/genreguide/gateway/graphql"
)

func newSchemaCommand() *cobra.Command {
	var normalize bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := graphql.LoadSDL()
			if err != nil {
				return err
			}
			if normalize {
				formatter.NewFormatter(cmd.OutOrStdout()).FormatSchema(schema)
				return nil
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), graphql.SDL)
			return err
		},
	}

	cmd.Flags().BoolVar(&normalize, "normalize", false, "Print the parsed schema in canonical form")
	return cmd
}
