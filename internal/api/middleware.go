/**
 * @description
 * This file contains custom middleware for the HTTP router, primarily the
 * JWT bearer authentication that places the calling actor (user id and role)
 * into the request context.
 *
 * @dependencies
 * - net/http, strings: Standard Go libraries.
 * - github.com/golang-jwt/jwt/v5: Token parsing and validation.
 */

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/app"
)

// actorContextKey is a custom type for the context key to avoid collisions.
type actorContextKey string

const actorKey actorContextKey = "actor"

// AuthMiddleware creates a middleware that validates HMAC-signed JWTs and
// injects the actor into the request context. Tokens must carry a "sub"
// claim with the user's UUID; an optional "role" claim grants admin rights.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			sub, _ := claims["sub"].(string)
			userID, err := uuid.Parse(sub)
			if err != nil {
				http.Error(w, "Invalid subject claim", http.StatusUnauthorized)
				return
			}
			role, _ := claims["role"].(string)

			actor := app.Actor{ID: userID, Role: role}
			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext extracts the authenticated actor from the request context.
func ActorFromContext(ctx context.Context) (app.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(app.Actor)
	return actor, ok
}

// RequireAdmin rejects requests whose actor lacks the administrative role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok || !actor.IsAdmin() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
