package controllers

import (
	"errors"
	"net/http"
	"time"

	gql "github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/thali/app/middleware"
	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/app/services"
	"github.com/shashiranjanraj/thali/pkg/graphql"
)

var errNoUser = errors.New("unauthorized")

// GraphQLController answers read-only queries over the menu and the caller's
// cart and orders.
type GraphQLController struct {
	handler http.HandlerFunc
}

func NewGraphQLController(
	catalog *services.CatalogService,
	carts *services.CartService,
	orders *services.OrderService,
) (*GraphQLController, error) {
	schema, err := graphql.NewSchema(queryType(catalog, carts, orders))
	if err != nil {
		return nil, err
	}
	return &GraphQLController{handler: graphql.Handler(schema)}, nil
}

func (c *GraphQLController) Query(w http.ResponseWriter, r *http.Request) {
	c.handler(w, r)
}

// field resolves from a source of type T, which the default resolver cannot
// do for embedded or converted values.
func field[T any](typ gql.Output, get func(T) any) *gql.Field {
	return &gql.Field{
		Type: typ,
		Resolve: func(p gql.ResolveParams) (any, error) {
			src, ok := p.Source.(T)
			if !ok {
				return nil, nil
			}
			return get(src), nil
		},
	}
}

func nonNull(t gql.Type) gql.Output { return gql.NewNonNull(t) }

func queryType(catalog *services.CatalogService, carts *services.CartService, orders *services.OrderService) *gql.Object {
	menuItem := gql.NewObject(gql.ObjectConfig{
		Name: "MenuItem",
		Fields: gql.Fields{
			"id":          field(nonNull(gql.Int), func(m models.MenuItem) any { return int(m.ID) }),
			"name":        field(nonNull(gql.String), func(m models.MenuItem) any { return m.Name }),
			"description": field(gql.String, func(m models.MenuItem) any { return m.Description }),
			"price":       field(nonNull(gql.Float), func(m models.MenuItem) any { return m.Price }),
			"imageUrl":    field(nonNull(gql.String), func(m models.MenuItem) any { return catalog.ImageURL(m) }),
		},
	})

	cartLine := gql.NewObject(gql.ObjectConfig{
		Name: "CartLine",
		Fields: gql.Fields{
			"item":      field(nonNull(menuItem), func(l services.CartLine) any { return l.Item }),
			"quantity":  field(nonNull(gql.Int), func(l services.CartLine) any { return l.Quantity }),
			"lineTotal": field(nonNull(gql.Float), func(l services.CartLine) any { return l.LineTotal }),
		},
	})

	cart := gql.NewObject(gql.ObjectConfig{
		Name: "Cart",
		Fields: gql.Fields{
			"lines": field(nonNull(gql.NewList(nonNull(cartLine))), func(v services.CartView) any {
				if v.Lines == nil {
					return []services.CartLine{}
				}
				return v.Lines
			}),
			"total": field(nonNull(gql.Float), func(v services.CartView) any { return v.Total }),
		},
	})

	order := gql.NewObject(gql.ObjectConfig{
		Name: "Order",
		Fields: gql.Fields{
			"id":         field(nonNull(gql.Int), func(o models.Order) any { return int(o.ID) }),
			"status":     field(nonNull(gql.String), func(o models.Order) any { return o.Status }),
			"totalPrice": field(nonNull(gql.Float), func(o models.Order) any { return o.TotalPrice }),
			"orderDate":  field(nonNull(gql.String), func(o models.Order) any { return o.OrderDate.Format(time.RFC3339) }),
		},
	})

	return gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"menu": &gql.Field{
				Type: nonNull(gql.NewList(nonNull(menuItem))),
				Resolve: func(p gql.ResolveParams) (any, error) {
					items, err := catalog.List(p.Context)
					if err != nil || items == nil {
						return []models.MenuItem{}, err
					}
					return items, nil
				},
			},
			"cart": &gql.Field{
				Type: nonNull(cart),
				Resolve: func(p gql.ResolveParams) (any, error) {
					u, ok := middleware.UserFromContext(p.Context)
					if !ok {
						return nil, errNoUser
					}
					return carts.View(p.Context, u.ID)
				},
			},
			"orders": &gql.Field{
				Type: nonNull(gql.NewList(nonNull(order))),
				Resolve: func(p gql.ResolveParams) (any, error) {
					u, ok := middleware.UserFromContext(p.Context)
					if !ok {
						return nil, errNoUser
					}
					list, err := orders.ListForUser(p.Context, u.ID)
					if err != nil || list == nil {
						return []models.Order{}, err
					}
					return list, nil
				},
			},
		},
	})
}
