package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendrickPhan/go-verify-apple-id-token/validator"
	"google.golang.org/api/idtoken"
)

type ExternalTokenClaims struct {
	Issuer  string
	Subject string
	Email   string
	Name    string
}

func VerifyGoogleIDToken(ctx context.Context, tokenString, expectedAud string) (*ExternalTokenClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, errors.New("missing id token")
	}
	if strings.TrimSpace(expectedAud) == "" {
		return nil, errors.New("missing google client id")
	}

	payload, err := idtoken.Validate(ctx, tokenString, expectedAud)
	if err != nil {
		return nil, err
	}
	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return nil, fmt.Errorf("unexpected issuer: %s", payload.Issuer)
	}

	claims := &ExternalTokenClaims{Issuer: payload.Issuer, Subject: payload.Subject}
	if raw, ok := payload.Claims["email"]; ok {
		if v, ok := raw.(string); ok {
			claims.Email = strings.TrimSpace(strings.ToLower(v))
		}
	}
	if raw, ok := payload.Claims["name"]; ok {
		if v, ok := raw.(string); ok {
			claims.Name = strings.TrimSpace(v)
		}
	}
	return claims, nil
}

func VerifyAppleIDToken(ctx context.Context, tokenString, expectedAud string) (*ExternalTokenClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, errors.New("missing id token")
	}
	if strings.TrimSpace(expectedAud) == "" {
		return nil, errors.New("missing apple service id")
	}

	client := validator.NewClient()
	idTok, err := client.VerifyIdToken(expectedAud, tokenString)
	if err != nil {
		return nil, err
	}
	if idTok.Iss != "https://appleid.apple.com" {
		return nil, fmt.Errorf("unexpected issuer: %s", idTok.Iss)
	}

	_ = ctx
	return &ExternalTokenClaims{
		Issuer:  idTok.Iss,
		Subject: idTok.Sub,
		Email:   strings.TrimSpace(strings.ToLower(idTok.Email)),
	}, nil
}
