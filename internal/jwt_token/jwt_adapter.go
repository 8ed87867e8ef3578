package jwttoken

import (
	authmw "tabilog/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *Claims) *authmw.TokenClaims {
	return &authmw.TokenClaims{
		Subject: claims.Subject,
		Name:    claims.Name,
	}
}

// VerifierAdapter satisfies authmw.TokenValidator.
type VerifierAdapter struct {
	verifier *Verifier
}

func NewVerifierAdapter(verifier *Verifier) *VerifierAdapter {
	return &VerifierAdapter{verifier: verifier}
}

func (a *VerifierAdapter) ValidateToken(tokenString string) (*authmw.TokenClaims, error) {
	claims, err := a.verifier.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
