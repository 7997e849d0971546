package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/evhenko/tunesync/internal/auth"
	"github.com/evhenko/tunesync/internal/config"
	"github.com/evhenko/tunesync/internal/core"
	"github.com/evhenko/tunesync/internal/domain"
	"github.com/evhenko/tunesync/internal/mail"
	"github.com/evhenko/tunesync/internal/storage"
)

const tokenCookieAge = 7 * 24 * 3600

// API serves the account endpoints. None of this touches room state;
// its only connection to the sync engine is the token it mints.
type API struct {
	Store  *storage.Store
	Tokens *auth.TokenManager
	Mailer mail.Sender
	Cfg    *config.Config
}

func (a *API) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.String(http.StatusBadRequest, "Missing")
		return
	}
	if existing, err := a.Store.UserByEmail(req.Email); err != nil {
		c.String(http.StatusInternalServerError, "error")
		return
	} else if existing != nil {
		c.String(http.StatusConflict, "User exists")
		return
	}
	hash, err := core.HashPassword(req.Password, a.Cfg.BcryptCost)
	if err != nil {
		c.String(http.StatusInternalServerError, "error")
		return
	}
	u := domain.User{Email: req.Email, PasswordHash: hash, VerifyToken: uuid.NewString()}
	if err := a.Store.CreateUser(u); err != nil {
		c.String(http.StatusInternalServerError, "error")
		return
	}

	// respond before touching SMTP so a slow relay never blocks signup
	c.JSON(http.StatusOK, gin.H{"ok": true})
	go a.sendVerification(u)
}

func (a *API) sendVerification(u domain.User) {
	verifyURL := fmt.Sprintf("%s/api/verify?token=%s", a.Cfg.VerifyURLBase, u.VerifyToken)
	if a.Mailer == nil {
		log.Info().Str("module", "adapters.http").Str("email", u.Email).Str("url", verifyURL).Msg("no mailer configured, verification link logged")
		return
	}
	body := fmt.Sprintf("Welcome to tunesync.\n\nPlease verify your email within 24 hours:\n%s\n\nIf you did not register, ignore this message.", verifyURL)
	if err := a.Mailer.Send(u.Email, "Verify your tunesync account", body); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("email", u.Email).Msg("verification mail failed")
	}
}

func (a *API) Verify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", verifyPage("Invalid link", "No verification token was provided.", a.Cfg.FrontendURL))
		return
	}
	u, err := a.Store.UserByVerifyToken(token)
	if err != nil {
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", verifyPage("Server error", "Verification is temporarily unavailable.", a.Cfg.FrontendURL))
		return
	}
	if u == nil {
		c.Data(http.StatusNotFound, "text/html; charset=utf-8", verifyPage("Link expired", "This link is invalid or was already used.", a.Cfg.FrontendURL))
		return
	}
	if err := a.Store.MarkVerified(u.Email); err != nil {
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", verifyPage("Server error", "Verification is temporarily unavailable.", a.Cfg.FrontendURL))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", verifyPage("Email verified", "Your email is verified, you can return to the app.", a.Cfg.FrontendURL))
}

func verifyPage(title, body, frontend string) []byte {
	return []byte(fmt.Sprintf(
		`<!doctype html><html><head><meta charset="utf-8"><title>%s</title></head><body style="font-family:sans-serif;padding:2rem;"><h1>%s</h1><p>%s</p><p><a href="%s">Back to the app</a></p></body></html>`,
		title, title, body, frontend))
}

func (a *API) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.String(http.StatusBadRequest, "Missing")
		return
	}
	u, err := a.Store.UserByEmail(req.Email)
	if err != nil {
		c.String(http.StatusInternalServerError, "error")
		return
	}
	if u == nil {
		c.String(http.StatusNotFound, "Not found")
		return
	}
	if !u.Verified {
		c.String(http.StatusForbidden, "Not verified")
		return
	}
	if !core.CheckPassword(u.PasswordHash, req.Password) {
		c.String(http.StatusUnauthorized, "Invalid")
		return
	}
	token, err := a.Tokens.Mint(u.Email)
	if err != nil {
		c.String(http.StatusInternalServerError, "error")
		return
	}
	c.SetCookie("token", token, tokenCookieAge, "/", "", false, true)
	c.Header("X-Auth-Token", token)
	c.JSON(http.StatusOK, gin.H{"ok": true, "token": token})
}

func (a *API) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, a.Cfg.FrontendURL)
}

// bearerToken pulls the token from the cookie or the Authorization
// header, cookie first.
func bearerToken(c *gin.Context) string {
	if t, err := c.Cookie("token"); err == nil && t != "" {
		return t
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// Me never fails: an absent or invalid token yields {"user": null}.
func (a *API) Me(c *gin.Context) {
	email := a.Tokens.Identify(bearerToken(c))
	if email == "" {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	u, err := a.Store.UserByEmail(email)
	if err != nil || u == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": gin.H{"email": u.Email, "nickname": u.Nickname}})
}

func (a *API) authedUser(c *gin.Context) *domain.User {
	email := a.Tokens.Identify(bearerToken(c))
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return nil
	}
	u, err := a.Store.UserByEmail(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server"})
		return nil
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil
	}
	return u
}

func (a *API) GetProfile(c *gin.Context) {
	u := a.authedUser(c)
	if u == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": gin.H{
		"email":    u.Email,
		"nickname": u.Nickname,
		"bio":      u.Bio,
		"avatar":   u.Avatar,
	}})
}

func (a *API) UpdateProfile(c *gin.Context) {
	u := a.authedUser(c)
	if u == nil {
		return
	}
	var req struct {
		Nickname     *string `json:"nickname"`
		Bio          *string `json:"bio"`
		AvatarBase64 *string `json:"avatarBase64"`
		Password     *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}
	if req.Nickname != nil {
		u.Nickname = *req.Nickname
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.AvatarBase64 != nil {
		if len(*req.AvatarBase64) <= domain.MaxAvatarBytes {
			u.Avatar = *req.AvatarBase64
		} else {
			log.Warn().Str("module", "adapters.http").Str("email", u.Email).Int("bytes", len(*req.AvatarBase64)).Msg("avatar too large, skipped")
		}
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := core.HashPassword(*req.Password, a.Cfg.BcryptCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server"})
			return
		}
		u.PasswordHash = hash
	}
	if err := a.Store.UpdateProfile(*u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
