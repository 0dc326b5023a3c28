package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/RahulEdward/pinegeniev2-sub011/config"
	"github.com/RahulEdward/pinegeniev2-sub011/database"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/tokens"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateCookie = "oauth_state"

func googleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.GOOGLE_CLIENT_ID,
		ClientSecret: config.GOOGLE_CLIENT_SECRET,
		RedirectURL:  config.GOOGLE_REDIRECT_URL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

var (
	googleVerifier     *oidc.IDTokenVerifier
	googleVerifierOnce sync.Once
	googleVerifierErr  error
)

// The provider does discovery against accounts.google.com; do it once and
// reuse the verifier for every callback.
func verifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	googleVerifierOnce.Do(func() {
		provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
		if err != nil {
			googleVerifierErr = errors.New("failed to init google oidc provider")
			return
		}
		googleVerifier = provider.Verifier(&oidc.Config{ClientID: config.GOOGLE_CLIENT_ID})
	})
	return googleVerifier, googleVerifierErr
}

// GET /auth/google
func GoogleStart(c *gin.Context) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate state"})
		return
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	// HttpOnly cookie; 5 minutes is plenty for the round trip
	c.SetCookie(stateCookie, state, 300, "/", "", false, true)

	c.Redirect(http.StatusFound, googleOAuthConfig().AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// GET /auth/google/callback
func GoogleCallback(c *gin.Context) {
	state, code := c.Query("state"), c.Query("code")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code/state"})
		return
	}
	if cookie, err := c.Cookie(stateCookie); err != nil || cookie != state {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}

	ctx := c.Request.Context()

	tok, err := googleOAuthConfig().Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to exchange code"})
		return
	}
	rawIDToken, _ := tok.Extra("id_token").(string)
	if rawIDToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing id_token"})
		return
	}

	claims, err := decodeGoogleIDToken(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	user, err := findOrCreateGoogleUser(claims)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	// Same JWT as password login so the frontend treats both identically
	appToken, err := issueAppJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create token"})
		return
	}

	if config.GOOGLE_FRONTEND_REDIRECT == "" {
		c.JSON(http.StatusOK, gin.H{"token": appToken})
		return
	}
	c.Redirect(http.StatusFound, config.GOOGLE_FRONTEND_REDIRECT+"?token="+appToken)
}

type googleIDClaims struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

func decodeGoogleIDToken(ctx context.Context, rawIDToken string) (*googleIDClaims, error) {
	v, err := verifier(ctx)
	if err != nil {
		return nil, err
	}

	idToken, err := v.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.New("invalid id_token")
	}

	var claims googleIDClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.New("failed to decode token claims")
	}
	if claims.Email == "" || claims.Sub == "" {
		return nil, errors.New("token missing required claims")
	}
	return &claims, nil
}

func findOrCreateGoogleUser(gc *googleIDClaims) (users.User, error) {
	var user users.User

	// Returning Google user
	if err := database.DB.Where("google_sub = ?", gc.Sub).First(&user).Error; err == nil {
		return user, nil
	}

	// Existing password account with the same email: link the Google
	// identity instead of creating a duplicate.
	if err := database.DB.Where("email = ?", gc.Email).First(&user).Error; err == nil {
		if user.GoogleSub == nil {
			sub := gc.Sub
			user.GoogleSub = &sub
			user.AuthProvider = "google"
			user.IsVerified = true
			if err := database.DB.Save(&user).Error; err != nil {
				return users.User{}, err
			}
		}
		return user, nil
	}

	now := time.Now()
	trialEnd := now.AddDate(0, 0, 14)
	sub := gc.Sub

	user = users.User{
		Name:         pickName(gc.GivenName, gc.Name),
		Lastname:     gc.FamilyName,
		Email:        gc.Email,
		Password:     nil,
		AuthProvider: "google",
		GoogleSub:    &sub,
		Role:         "user",
		IsVerified:   true,
		TrialStartAt: &now,
		TrialEndAt:   &trialEnd,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		return users.User{}, err
	}

	// Same welcome credits as local signup
	if _, err := tokens.GrantTokens(database.DB, user.ID, config.SIGNUP_BONUS_TOKENS, tokens.ReasonSignupBonus, nil, nil); err != nil {
		return users.User{}, err
	}

	return user, nil
}

func issueAppJWT(user users.User) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	return t.SignedString([]byte(config.JWT_SECRET))
}

func pickName(candidates ...string) string {
	for _, v := range candidates {
		if v != "" {
			return v
		}
	}
	return ""
}
