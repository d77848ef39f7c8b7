package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/api/middleware"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	pkgerrors "github.com/autolenis/autolenis-backend/pkg/errors"
)

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// actorFromContext resolves the authenticated actor seeded by the auth
// middleware. A request that got past auth with unparsable identity is a
// server-side inconsistency, not a client error.
func actorFromContext(r *http.Request) (uuid.UUID, enums.ActorRole, error) {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeInternal, "actor identity missing from context")
	}
	role := enums.ActorRole(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeInternal, "actor role missing from context")
	}
	return userID, role, nil
}
