package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/evently/internal/middleware"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/services"
)

func SignUp(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := c.ShouldBindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := u.CreateUser(c.Request.Context(), &user)
		if err != nil {
			respondError(c, err)
			return
		}
		created.Password = ""

		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Account created successfully"))
	}
}

// SignIn sets the session cookies and also returns the tokens, since the mobile
// client keeps its own copy.
func SignIn(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		session, err := u.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if models.IsValidationError(err) {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("invalid email or password"))
			return
		}

		middleware.SetSessionCookies(c, session, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(session, "Signed in successfully"))
	}
}

func RefreshSession(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.ShouldBindJSON(&req)
		if req.RefreshToken == "" {
			req.RefreshToken, _ = c.Cookie("refresh_token")
		}

		session, err := u.RefreshToken(c.Request.Context(), req.RefreshToken)
		if err != nil {
			if models.IsValidationError(err) {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("session expired, please sign in again"))
			return
		}

		middleware.SetSessionCookies(c, session, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(session, "Session refreshed"))
	}
}

func Logout(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.ClearSessionCookies(c, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out successfully"))
	}
}
