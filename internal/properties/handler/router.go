package handler

import (
	"github.com/julienschmidt/httprouter"
)

// PropertiesHandler bundles the property and membership route sets into
// the single handler the application expects.
type PropertiesHandler struct {
	property   *PropertyHandler
	membership *MembershipHandler
}

func NewPropertiesHandler(property *PropertyHandler, membership *MembershipHandler) *PropertiesHandler {
	return &PropertiesHandler{
		property:   property,
		membership: membership,
	}
}

func (h *PropertiesHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/properties", h.property.Create)
	router.GET("/api/v1/properties", h.property.GetAll)
	router.GET("/api/v1/properties/id/:id", h.property.GetByID)
	router.PATCH("/api/v1/properties/id/:id", h.property.Update)
	router.DELETE("/api/v1/properties/id/:id", h.property.Delete)

	router.POST("/api/v1/properties/id/:id/memberships", h.membership.Create)
	router.GET("/api/v1/properties/id/:id/memberships", h.membership.GetByProperty)
	router.GET("/api/v1/memberships/id/:id", h.membership.GetByID)
	router.GET("/api/v1/memberships/id/:id/balance", h.membership.GetBalance)
	router.PATCH("/api/v1/memberships/id/:id", h.membership.Update)
	router.DELETE("/api/v1/memberships/id/:id", h.membership.Delete)
}
