package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/meetpoint/internal/core/domain"
)

// gqlError exposes the domain error kind as extensions.code.
type gqlError struct {
	msg  string
	kind domain.ErrorKind
}

func (e gqlError) Error() string { return e.msg }

func (e gqlError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.kind)}
}

func toGQLError(err error) error {
	msg := "internal error"
	var de *domain.Error
	if errors.As(err, &de) && de.Message != "" {
		msg = de.Message
	}
	return gqlError{msg: msg, kind: domain.KindOf(err)}
}

// modeString renders a TravelMode (or *TravelMode) field as a plain string.
func modeString(v interface{}) interface{} {
	switch m := v.(type) {
	case domain.TravelMode:
		return string(m)
	case *domain.TravelMode:
		if m == nil {
			return nil
		}
		return string(*m)
	}
	return nil
}

// buildSchema creates the GraphQL schema wired to the planner. Field names
// follow the REST JSON so the default resolver can read the domain structs.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
		},
	})

	areaType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Area",
		Fields: graphql.Fields{
			"postalCode": &graphql.Field{Type: graphql.String},
			"district":   &graphql.Field{Type: graphql.String},
			"region":     &graphql.Field{Type: graphql.String},
		},
	})

	inputsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PlanInputs",
		Fields: graphql.Fields{
			"postalCode1": &graphql.Field{Type: graphql.String},
			"postalCode2": &graphql.Field{Type: graphql.String},
		},
	})

	distancesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Distances",
		Fields: graphql.Fields{
			"person1": &graphql.Field{Type: graphql.Float},
			"person2": &graphql.Field{Type: graphql.Float},
		},
	})

	travelOptionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TravelOption",
		Fields: graphql.Fields{
			"mode": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if o, ok := p.Source.(domain.TravelOption); ok {
						return string(o.Mode), nil
					}
					return nil, nil
				},
			},
			"durationMinutes": &graphql.Field{Type: graphql.Int},
			"notes":           &graphql.Field{Type: graphql.String},
		},
	})

	travelType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TravelSummary",
		Fields: graphql.Fields{
			"fromPerson1": &graphql.Field{Type: graphql.NewList(travelOptionType)},
			"fromPerson2": &graphql.Field{Type: graphql.NewList(travelOptionType)},
			"recommendedModePerson1": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if t, ok := p.Source.(domain.TravelSummary); ok {
						return modeString(t.RecommendedModePerson1), nil
					}
					return nil, nil
				},
			},
			"recommendedModePerson2": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if t, ok := p.Source.(domain.TravelSummary); ok {
						return modeString(t.RecommendedModePerson2), nil
					}
					return nil, nil
				},
			},
		},
	})

	planOptionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PlanOption",
		Fields: graphql.Fields{
			"name":       &graphql.Field{Type: graphql.String},
			"rating":     &graphql.Field{Type: graphql.Float},
			"details":    &graphql.Field{Type: graphql.String},
			"highlights": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"sourceUrl":  &graphql.Field{Type: graphql.String},
		},
	})

	planType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Plan",
		Fields: graphql.Fields{
			"midpointAreaLabel": &graphql.Field{Type: graphql.String},
			"foodOptions":       &graphql.Field{Type: graphql.NewList(planOptionType)},
			"activityOptions":   &graphql.Field{Type: graphql.NewList(planOptionType)},
		},
	})

	meetupPlanType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MeetupPlan",
		Fields: graphql.Fields{
			"ok":          &graphql.Field{Type: graphql.Boolean},
			"id":          &graphql.Field{Type: graphql.String},
			"inputs":      &graphql.Field{Type: inputsType},
			"midpoint":    &graphql.Field{Type: coordinateType},
			"area":        &graphql.Field{Type: areaType},
			"distancesKm": &graphql.Field{Type: distancesType},
			"travel":      &graphql.Field{Type: travelType},
			"result":      &graphql.Field{Type: planType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"meetupPlan": &graphql.Field{
				Type:        meetupPlanType,
				Description: "Plan a meetup between two postal codes",
				Args: graphql.FieldConfigArgument{
					"postalCode1": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"postalCode2": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"preferences": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req := domain.PlanRequest{}
					req.PostalCode1, _ = p.Args["postalCode1"].(string)
					req.PostalCode2, _ = p.Args["postalCode2"].(string)
					req.Preferences, _ = p.Args["preferences"].(string)

					resp, err := deps.Meetups.Plan(p.Context, req)
					if err != nil {
						return nil, toGQLError(err)
					}
					return resp, nil
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
		if len(result.Errors) > 0 {
			if code, ok := result.Errors[0].Extensions["code"].(string); ok {
				c.Locals(localErrorCode, code)
			}
		}

		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(result)
	}
}
