// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package authz decides who may change the category tree. The tree itself
// never checks permissions; the HTTP layer asks an AuthZ before calling it.
package authz

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Actor is the caller of a mutating request.
type Actor struct {
	// Token is the bearer credential presented with the request.
	Token string
	// Remote is the client address, for audit logging only.
	Remote string
}

// AuthZ answers permission questions about an actor.
type AuthZ interface {
	CanMutateCategory(ctx context.Context, actor Actor) bool
}

// TokenAuthZ grants category mutations to actors whose token matches a
// bcrypt hash. With no hash configured nobody is allowed.
type TokenAuthZ struct {
	hash []byte
}

// NewTokenAuthZ returns a TokenAuthZ for a bcrypt hash such as the one
// produced by HashToken. An empty hash denies everyone.
func NewTokenAuthZ(hash string) (*TokenAuthZ, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("parse admin token hash: %w", err)
		}
	}
	return &TokenAuthZ{hash: []byte(hash)}, nil
}

// CanMutateCategory reports whether actor's token matches the admin hash.
func (a *TokenAuthZ) CanMutateCategory(_ context.Context, actor Actor) bool {
	if len(a.hash) == 0 || actor.Token == "" {
		return false
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(actor.Token)); err != nil {
		slog.Warn("category mutation denied", "remote", actor.Remote)
		return false
	}
	return true
}

// AllowAll permits every mutation. Used in development when no admin token
// is configured.
type AllowAll struct{}

// CanMutateCategory always returns true.
func (AllowAll) CanMutateCategory(context.Context, Actor) bool {
	return true
}

// HashToken returns the bcrypt hash to put in ADMIN_TOKEN_HASH for token.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash admin token: %w", err)
	}
	return string(hash), nil
}
