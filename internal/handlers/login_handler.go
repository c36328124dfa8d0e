package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-repair-pos/internal/models"
	"go-repair-pos/internal/services"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserView is a user without the password hash.
type UserView struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	LastLogin *time.Time  `json:"lastLogin,omitempty"`
}

func viewUser(u models.User) UserView {
	return UserView{ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt, LastLogin: u.LastLogin}
}

func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.Issuer.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"role":     user.Role,
		"username": user.Username,
		"user":     viewUser(user),
	})
}

// Register is only mounted when ALLOW_REGISTRATION is set. Self-registered
// accounts are always staff; admins promote them through /api/users.
func (h *Handler) Register(c *gin.Context) {
	var input services.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}
	input.Role = models.RoleStaff

	user, err := h.Users.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully!", "user": viewUser(user)})
}

func (h *Handler) Me(c *gin.Context) {
	sess := session(c)
	c.JSON(http.StatusOK, gin.H{"id": sess.UserID, "username": sess.Username, "role": sess.Role})
}
