package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Dm-vYzion/StoryForge/cache"
	"github.com/Dm-vYzion/StoryForge/config"
	mw "github.com/Dm-vYzion/StoryForge/middleware"
	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	db    *gorm.DB
	cache cache.Cache
	sec   config.SecurityConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, c cache.Cache, sec config.SecurityConfig) *AuthHandler {
	return &AuthHandler{db: db, cache: c, sec: sec}
}

type registerRequest struct {
	Email       string `json:"email"       binding:"required,email"`
	Password    string `json:"password"    binding:"required,min=8,max=128"`
	DisplayName string `json:"displayName" binding:"required,min=2,max=50"`
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func userView(u *model.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"displayName": u.DisplayName,
		"plan":        u.Plan,
	}
}

// openSession issues a token, records it in the session cache, and sets
// the auth cookie.
func (h *AuthHandler) openSession(c *gin.Context, user *model.User) (string, error) {
	token, err := mw.GenerateToken(user.ID, user.Email, h.sec.JWTSecret, h.sec.JWTTTL)
	if err != nil {
		return "", err
	}
	if err := h.cache.Set(c.Request.Context(), "session:"+token, "1", h.sec.JWTTTL); err != nil {
		return "", err
	}
	c.SetCookie(mw.TokenCookie, token, int(h.sec.JWTTTL.Seconds()), "/", "", h.sec.CookieSecure, true)
	return token, nil
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(req.Email)
	var existing model.User
	err := h.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		fail(c, http.StatusConflict, "User with this email already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.sec.BcryptCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Plan:         model.PlanFree,
	}
	if err := h.db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			fail(c, http.StatusConflict, "User with this email already exists")
		} else {
			fail(c, http.StatusInternalServerError, "internal error")
		}
		return
	}

	token, err := h.openSession(c, user)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusCreated, gin.H{"user": userView(user), "token": token})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var user model.User
	err := h.db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error
	if err != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.openSession(c, &user)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	ok(c, http.StatusOK, gin.H{"user": userView(&user), "token": token})
}

// Logout handles POST /api/auth/logout. It invalidates the cached
// session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := c.GetHeader("Authorization"); strings.HasPrefix(token, "Bearer ") {
		_ = h.cache.Del(c.Request.Context(), "session:"+strings.TrimPrefix(token, "Bearer "))
	} else if tok, err := c.Cookie(mw.TokenCookie); err == nil {
		_ = h.cache.Del(c.Request.Context(), "session:"+tok)
	}
	c.SetCookie(mw.TokenCookie, "", -1, "/", "", h.sec.CookieSecure, true)
	okMessage(c, http.StatusOK, "Logged out successfully")
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := mw.GetUserID(c)
	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	view := userView(&user)
	view["createdAt"] = user.CreatedAt.Format(time.RFC3339)
	ok(c, http.StatusOK, gin.H{"user": view})
}
