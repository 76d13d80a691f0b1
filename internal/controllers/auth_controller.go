package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fleetops/internal/apperr"
	"fleetops/internal/ids"
	"fleetops/internal/models"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

type signupInput struct {
	Username string `json:"username" binding:"notblank"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

var (
	errAdminRequired    = errors.New("an admin token is required to create accounts")
	errInsufficientRole = errors.New("insufficient permissions")
)

type loginInput struct {
	Username string `json:"username" binding:"notblank"`
	Password string `json:"password" binding:"required"`
}

// SignupUser creates an operator account. The very first account may be
// created anonymously and is always an admin; after that only an admin
// token may create accounts.
func (h *Handler) SignupUser(c *gin.Context) {
	var input signupInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}
	role, err := validateAndNormalizeRole(input.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}
	user := models.User{
		UserID:   ids.New(ids.User),
		Username: strings.TrimSpace(input.Username),
		Password: hashedPassword,
	}

	// Only the transaction that claims the first-admin row may create an
	// account anonymously.
	err = h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return apperr.FromDB("user", "", err)
		}
		creator := "signup"
		if count == 0 {
			role = RoleAdmin
			claim := models.Bootstrap{Key: models.BootstrapFirstAdmin, UserID: user.UserID}
			claim.Stamp(creator)
			if err := apperr.FromDB("bootstrap", claim.Key, tx.Create(&claim).Error); err != nil {
				if apperr.IsConflict(err) {
					return errAdminRequired
				}
				return err
			}
		} else {
			claims, err := h.Verifier.Verify(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
			if err != nil {
				return err
			}
			if claims.Role != RoleAdmin {
				return errInsufficientRole
			}
			creator = claims.Subject
		}
		user.Role = role
		user.Stamp(creator)
		return apperr.FromDB("user", user.UserID, tx.Create(&user).Error)
	})
	switch {
	case err == nil:
	case errors.Is(err, errAdminRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	case errors.Is(err, errInsufficientRole):
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	case apperr.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": "username already in use"})
		return
	default:
		respondError(c, err)
		return
	}
	logrus.WithFields(logrus.Fields{"user_id": user.UserID, "role": role}).Info("SignupUser: account created")

	token, err := h.Verifier.GenerateToken(user.UserID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) LoginUser(c *gin.Context) {
	var body loginInput
	if err := bindJSON(c, &body); err != nil {
		respondError(c, err)
		return
	}

	var user models.User
	err := h.DB.WithContext(c.Request.Context()).Where("username = ?", strings.TrimSpace(body.Username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found or invalid credentials"})
			return
		}
		respondError(c, apperr.FromDB("user", "", err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found or invalid credentials"})
		return
	}

	token, err := h.Verifier.GenerateToken(user.UserID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// ListUsers returns every operator account.
func (h *Handler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.WithContext(c.Request.Context()).Order("username").Find(&users).Error; err != nil {
		respondError(c, apperr.FromDB("user", "", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func validateAndNormalizeRole(roleInput string) (string, error) {
	role := strings.ToLower(strings.TrimSpace(roleInput))
	if role == "" {
		role = RoleOperator
	}
	switch role {
	case RoleAdmin, RoleOperator:
		return role, nil
	default:
		return "", apperr.ValidationError{Field: "role", Msg: "must be admin or operator"}
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
