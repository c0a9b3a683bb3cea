package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"rishta/middleware"
	"rishta/models"
	"rishta/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const verificationCodeTTL = 10 * time.Minute

type RegisterRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DateOfBirth string `json:"dateOfBirth" binding:"required"`
	Gender      string `json:"gender" binding:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type ResendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func generateVerificationCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failing means something is deeply wrong with the host
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

func randomAvatar() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("/avatars/avatar%d.jpg", n.Int64()+1)
}

// Register validates the signup form, stores a pending registration and
// emails a 6-digit code. The user document itself is only created once
// the code is confirmed.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	gender := strings.ToLower(strings.TrimSpace(req.Gender))
	if gender != "male" && gender != "female" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Gender must be male or female"})
		return
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid date of birth, expected YYYY-MM-DD"})
		return
	}
	if age := yearsSince(dob, time.Now()); age < 18 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "You must be at least 18 years old to register"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if _, err := h.Users.FindByEmail(ctx, email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already registered"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
		return
	}

	code := generateVerificationCode()
	pending := &models.PendingRegistration{
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            email,
		Password:         string(hashed),
		DateOfBirth:      dob,
		Gender:           gender,
		ProfilePicture:   randomAvatar(),
		VerificationCode: code,
		ExpiresAt:        time.Now().Add(verificationCodeTTL),
	}
	if err := h.Pending.Upsert(ctx, pending); err != nil {
		log.Printf("[Register] failed to store pending registration: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
		return
	}

	if err := h.Mailer.SendVerificationCode(email, pending.FirstName, code); err != nil {
		// Registration stands; the user can request a new code.
		log.Printf("[Register] verification email to %s failed: %v", email, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful! Please check your email for verification code.",
		"email":   email,
	})
}

// VerifyEmail confirms the code, creates the user document and logs the
// new user in.
func (h *Handler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and verification code are required"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := requestContext()
	defer cancel()

	pending, err := h.Pending.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		if _, userErr := h.Users.FindByEmail(ctx, email); userErr == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email already verified"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid verification code"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during email verification"})
		return
	}

	if pending.Expired(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Verification code has expired. Please request a new one."})
		return
	}
	if pending.VerificationCode != req.Code {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid verification code"})
		return
	}

	user := &models.User{
		FirstName:      pending.FirstName,
		LastName:       pending.LastName,
		Email:          pending.Email,
		Password:       pending.Password,
		DateOfBirth:    pending.DateOfBirth,
		Gender:         pending.Gender,
		ProfilePicture: pending.ProfilePicture,
		Languages:      []string{},
		CustomFields:   map[string]string{},
		Tags:           []string{},
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := h.Users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email already verified"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during email verification"})
		return
	}

	if err := h.Pending.DeleteByEmail(ctx, email); err != nil {
		log.Printf("[VerifyEmail] failed to remove pending registration for %s: %v", email, err)
	}

	token, err := middleware.GenerateToken(h.JWTSecret, user.ID.Hex(), user.Email, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully!",
		"token":   token,
		"user":    loginUserPayload(user),
	})
}

// ResendCode regenerates the verification code for a pending
// registration.
func (h *Handler) ResendCode(c *gin.Context) {
	var req ResendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := requestContext()
	defer cancel()

	if _, err := h.Users.FindByEmail(ctx, email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already verified"})
		return
	}

	pending, err := h.Pending.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while resending code"})
		return
	}

	pending.VerificationCode = generateVerificationCode()
	pending.ExpiresAt = time.Now().Add(verificationCodeTTL)
	if err := h.Pending.Upsert(ctx, pending); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while resending code"})
		return
	}

	if err := h.Mailer.SendVerificationCode(email, pending.FirstName, pending.VerificationCode); err != nil {
		log.Printf("[ResendCode] verification email to %s failed: %v", email, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code has been resent to your email"})
}

// Login checks credentials, self-heals the profileCompleted flag and
// issues a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := requestContext()
	defer cancel()

	user, err := h.Users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during login"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	// The stored flag is derived state; recompute it on login so drift
	// from older writes heals itself.
	if completed := user.ComputeProfileCompleted(); completed != user.ProfileCompleted {
		user.ProfileCompleted = completed
		if err := h.Users.Replace(ctx, user); err != nil {
			log.Printf("[Login] failed to persist profileCompleted for %s: %v", user.Email, err)
		}
	}

	token, err := middleware.GenerateToken(h.JWTSecret, user.ID.Hex(), user.Email, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    loginUserPayload(user),
	})
}

func loginUserPayload(u *models.User) gin.H {
	return gin.H{
		"id":               u.ID.Hex(),
		"firstName":        u.FirstName,
		"lastName":         u.LastName,
		"email":            u.Email,
		"gender":           u.Gender,
		"isAdmin":          u.IsAdmin,
		"profilePicture":   u.ProfilePicture,
		"profileCompleted": u.ProfileCompleted,
	}
}

func yearsSince(t, now time.Time) int {
	years := now.Year() - t.Year()
	if now.YearDay() < t.YearDay() {
		years--
	}
	return years
}
