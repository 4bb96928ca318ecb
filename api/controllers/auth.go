package controllers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/arcadialabs/landgrid-backend/api/responses"
	"github.com/arcadialabs/landgrid-backend/api/validators"
	pkgAuth "github.com/arcadialabs/landgrid-backend/pkg/auth"
	"github.com/arcadialabs/landgrid-backend/pkg/auth/session"
	"github.com/arcadialabs/landgrid-backend/pkg/config"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	pkgerrors "github.com/arcadialabs/landgrid-backend/pkg/errors"
	"github.com/arcadialabs/landgrid-backend/pkg/logger"
)

type sessionIssuer interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

type sessionRequest struct {
	Wallet string `json:"wallet" validate:"required,min=3,max=128"`
	Role   string `json:"role"`
}

type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Wallet       string `json:"wallet"`
	Role         string `json:"role"`
}

// AuthSession mints an access/refresh pair for a wallet whose identity was
// verified upstream. The gateway proves itself with the bootstrap secret.
func AuthSession(manager sessionIssuer, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable"))
			return
		}
		if cfg.BootstrapSecret == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bootstrap secret not configured"))
			return
		}

		provided := r.Header.Get("X-Bootstrap-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.BootstrapSecret)) != 1 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid bootstrap secret"))
			return
		}

		var body sessionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := enums.ActorRolePlayer
		if body.Role != "" {
			parsed, err := enums.ParseActorRole(body.Role)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			role = parsed
		}

		accessID := session.NewAccessID()
		payload := pkgAuth.AccessTokenPayload{
			Wallet: body.Wallet,
			Role:   role,
			JTI:    accessID,
		}

		accessToken, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt"))
			return
		}

		refreshToken, err := manager.Generate(r.Context(), accessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create session"))
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"wallet":     body.Wallet,
				"actor_role": string(role),
			})
			logg.Info(ctx, "auth.session.created")
		}

		w.Header().Set("X-LG-Token", accessToken)
		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			Wallet:       body.Wallet,
			Role:         string(role),
		})
	}
}
