// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"jobboard/internal/apperr"
	"jobboard/internal/authz"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// ActorKey is the context key for the authorized actor.
const ActorKey contextKey = "actor"

// RequireCategoryAdmin lets a request through only when az allows its
// bearer token to mutate categories. A missing token is 401, a rejected
// one 403.
func RequireCategoryAdmin(az authz.AuthZ) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := authz.Actor{Token: bearerToken(r), Remote: clientIP(r)}
			if !az.CanMutateCategory(r.Context(), actor) {
				if actor.Token == "" {
					w.Header().Set("WWW-Authenticate", `Bearer realm="jobboard"`)
					apperr.Write(w, apperr.New(apperr.CodeUnauthorized, "", "bearer token required"))
					return
				}
				apperr.Write(w, apperr.New(apperr.CodeForbidden, "", "not allowed to modify categories"))
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromCtx returns the actor stored by RequireCategoryAdmin, if any.
func ActorFromCtx(ctx context.Context) (authz.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(authz.Actor)
	return actor, ok
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
