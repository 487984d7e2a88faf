package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/civicfix/internal/core/matching"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"city":     &graphql.Field{Type: graphql.String},
			"state":    &graphql.Field{Type: graphql.String},
			"district": &graphql.Field{Type: graphql.String},
			"pincode":  &graphql.Field{Type: graphql.String},
			"ward":     &graphql.Field{Type: graphql.String},
			"area":     &graphql.Field{Type: graphql.String},
		},
	})

	officialType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Official",
		Fields: graphql.Fields{
			"user_id":     &graphql.Field{Type: graphql.String},
			"full_name":   &graphql.Field{Type: graphql.String},
			"is_verified": &graphql.Field{Type: graphql.Boolean},
			"location":    &graphql.Field{Type: locationType},
		},
	})

	officialMatchType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OfficialMatch",
		Fields: graphql.Fields{
			"user_id":       &graphql.Field{Type: graphql.String},
			"full_name":     &graphql.Field{Type: graphql.String},
			"score":         &graphql.Field{Type: graphql.Int},
			"match_reasons": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"location":      &graphql.Field{Type: locationType},
		},
	})

	matchResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MatchResult",
		Fields: graphql.Fields{
			"matched_official":        &graphql.Field{Type: officialMatchType},
			"alternatives":            &graphql.Field{Type: graphql.NewList(officialMatchType)},
			"total_officials_checked": &graphql.Field{Type: graphql.Int},
			"message":                 &graphql.Field{Type: graphql.String},
		},
	})

	issueType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Issue",
		Fields: graphql.Fields{
			"id":                   &graphql.Field{Type: graphql.String},
			"title":                &graphql.Field{Type: graphql.String},
			"description":          &graphql.Field{Type: graphql.String},
			"issue_type":           &graphql.Field{Type: graphql.String},
			"status":               &graphql.Field{Type: graphql.String},
			"priority":             &graphql.Field{Type: graphql.Int},
			"location":             &graphql.Field{Type: geoPointType},
			"address":              &graphql.Field{Type: graphql.String},
			"city":                 &graphql.Field{Type: graphql.String},
			"state":                &graphql.Field{Type: graphql.String},
			"pincode":              &graphql.Field{Type: graphql.String},
			"media_urls":           &graphql.Field{Type: graphql.NewList(graphql.String)},
			"assigned_official_id": &graphql.Field{Type: graphql.String},
			"distance":             &graphql.Field{Type: graphql.Float},
			"created_at":           &graphql.Field{Type: graphql.String},
			"resolved_at":          &graphql.Field{Type: graphql.String},
		},
	})

	reviewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Review",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"issue_id":   &graphql.Field{Type: graphql.String},
			"rating":     &graphql.Field{Type: graphql.Int},
			"comment":    &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.String},
		},
	})

	ratingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OfficialRating",
		Fields: graphql.Fields{
			"official_id": &graphql.Field{Type: graphql.String},
			"average":     &graphql.Field{Type: graphql.Float},
			"count":       &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"officials": &graphql.Field{
				Type:        graphql.NewList(officialType),
				Description: "List verified officials",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					officials, err := deps.Officials.ListVerified(p.Context)
					if err != nil {
						return nil, err
					}
					return asJSON(officials)
				},
			},
			"officialRating": &graphql.Field{
				Type:        ratingType,
				Description: "Average review score of an official",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rating, err := deps.Reviews.OfficialRating(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return asJSON(rating)
				},
			},
			"matchOfficial": &graphql.Field{
				Type:        matchResultType,
				Description: "Rank verified officials against a location",
				Args: graphql.FieldConfigArgument{
					"latitude":  &graphql.ArgumentConfig{Type: graphql.Float},
					"longitude": &graphql.ArgumentConfig{Type: graphql.Float},
					"city":      &graphql.ArgumentConfig{Type: graphql.String},
					"state":     &graphql.ArgumentConfig{Type: graphql.String},
					"district":  &graphql.ArgumentConfig{Type: graphql.String},
					"pincode":   &graphql.ArgumentConfig{Type: graphql.String},
					"ward":      &graphql.ArgumentConfig{Type: graphql.String},
					"area":      &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := matching.LocationQuery{
						Latitude:  floatArg(p.Args, "latitude"),
						Longitude: floatArg(p.Args, "longitude"),
						City:      stringArg(p.Args, "city"),
						State:     stringArg(p.Args, "state"),
						District:  stringArg(p.Args, "district"),
						Pincode:   stringArg(p.Args, "pincode"),
						Ward:      stringArg(p.Args, "ward"),
						Area:      stringArg(p.Args, "area"),
					}
					out, err := deps.Matcher.MatchOfficial(p.Context, q)
					if err != nil {
						return nil, err
					}
					return asJSON(newMatchResponse(out.Result, out.TotalChecked))
				},
			},
			"issue": &graphql.Field{
				Type:        issueType,
				Description: "Get an issue by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					issue, err := deps.Issues.Get(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return asJSON(issue)
				},
			},
			"issuesNearby": &graphql.Field{
				Type:        graphql.NewList(issueType),
				Description: "Find issues near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 2000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					issues, err := deps.Issues.ListNearby(p.Context,
						p.Args["lat"].(float64), p.Args["lon"].(float64),
						p.Args["radius"].(float64), p.Args["limit"].(int))
					if err != nil {
						return nil, err
					}
					return asJSON(issues)
				},
			},
			"issueReviews": &graphql.Field{
				Type:        graphql.NewList(reviewType),
				Description: "Reviews left on an issue",
				Args: graphql.FieldConfigArgument{
					"issue_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					reviews, err := deps.Reviews.List(p.Context, p.Args["issue_id"].(string))
					if err != nil {
						return nil, err
					}
					return asJSON(reviews)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// asJSON converts a value to its JSON shape so field names follow the json
// tags used by the REST API, embedded structs included.
func asJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func floatArg(args map[string]interface{}, name string) *float64 {
	if v, ok := args[name].(float64); ok {
		return &v
	}
	return nil
}

func stringArg(args map[string]interface{}, name string) *string {
	if v, ok := args[name].(string); ok {
		return &v
	}
	return nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
