package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/formhunt/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to the metadata service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	engineStatusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "EngineStatus",
		Fields: graphql.Fields{
			"available": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})

	categoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"name":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"limit": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	featureGroupType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "FeatureGroup",
		Description: "Names of nearby features of one category, nearest first",
		Fields: graphql.Fields{
			"category": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"names":    &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"engineStatus": &graphql.Field{
				Type:        graphql.NewNonNull(engineStatusType),
				Description: "Whether the engine was found at startup",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return map[string]interface{}{
						"available": deps.Metadata.Status().Available,
					}, nil
				},
			},
			"categories": &graphql.Field{
				Type:        graphql.NewList(categoryType),
				Description: "Feature categories and their per-lookup limits",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var out []map[string]interface{}
					for _, c := range domain.Categories {
						out = append(out, map[string]interface{}{"name": c.Name, "limit": c.Limit})
					}
					return out, nil
				},
			},
			"metadata": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(featureGroupType))),
				Description: "Nearby features around a coordinate; empty when the engine is unavailable or fails",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pt := domain.GeoPoint{
						Lat: p.Args["lat"].(float64),
						Lon: p.Args["lon"].(float64),
					}
					if err := pt.Validate(); err != nil {
						return nil, err
					}
					md := deps.Metadata.Lookup(p.Context, pt)

					// category order is fixed so responses are stable
					out := []map[string]interface{}{}
					for _, c := range domain.Categories {
						if names, ok := md[c.Name]; ok {
							out = append(out, map[string]interface{}{"category": c.Name, "names": names})
						}
					}
					return out, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil || req.Query == "" {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(result)
	}
}
