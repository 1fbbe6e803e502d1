// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// stub API's directory service by the composition root.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a JWT Access Token.
//
// # Why custom claims?
//
// By embedding the UserID, Email, and Role directly inside the JWT, the stub
// API can answer /auth/verify-token WITHOUT querying the directory on every
// poll from the portal. The Role claim always carries the backend role
// vocabulary (including "department_head"); translation to the portal
// vocabulary is the portal's job, never the token's.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID string `json:"uid"`
	Email  string `json:"eml"`
	Role   string `json:"rol"`
}

// TokenService handles generation and verification of JWT tokens using HS256.
//
// # Why HMAC rather than RSA?
//
// The stub API is both the issuer and the sole verifier of its tokens, so a
// shared secret is sufficient and keeps deployments free of key files.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService signing with the given secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("sec: signing secret must be at least 32 bytes, got %d", len(secret))
	}

	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// GenerateAccessToken creates a new JWT access token for an account.
func (service *TokenService) GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a JWT string.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
