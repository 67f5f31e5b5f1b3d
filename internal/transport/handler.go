package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"urbanfix-backend/internal/config"
	apperrors "urbanfix-backend/internal/errors"
	"urbanfix-backend/internal/logger"
	"urbanfix-backend/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// EmailRequest is the /send-email body. Coordinates default to "Unknown"
// when absent; ImageID links the report to a specific /detect response.
type EmailRequest struct {
	Message   string `json:"message"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	ImageID   string `json:"imageId"`
}

// LoginRequest accepts either a username or an email as the identifier.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the /auth/register body.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdateRequest is the PUT /user/profile body.
type ProfileUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewHandler wires all routes onto a gin engine.
func NewHandler(
	detection service.DetectionService,
	report service.ReportService,
	users service.UserService,
	cfg *config.Config,
) http.Handler {
	r := gin.New()

	r.Use(
		gin.Logger(),
		gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
			logger.WithField("panic", recovered).Error("Recovered from panic in request handler")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "An internal server error occurred.",
			})
		}),
		cors.Default(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	r.GET("/health", healthCheck)

	r.POST("/detect", detectPotholes(detection, cfg))
	r.POST("/send-email", sendEmail(report))
	r.GET("/locations", getLocations(users))

	r.POST("/auth/login", login(users))
	r.POST("/auth/register", register(users))

	r.GET("/user/profile/:user_id", getProfile(users))
	r.PUT("/user/profile/:user_id", updateProfile(users))
	r.GET("/user/complaints/:user_id", getComplaints(users))

	return r
}

func detectPotholes(detection service.DetectionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondError(c, http.StatusBadRequest, "No file part in the request", err)
			return
		}
		if fileHeader.Filename == "" {
			respondError(c, http.StatusBadRequest, "No file selected for uploading", nil)
			return
		}

		latitude := c.DefaultPostForm("latitude", "Unknown")
		longitude := c.DefaultPostForm("longitude", "Unknown")
		logger.WithFields(logrus.Fields{
			"filename":  fileHeader.Filename,
			"latitude":  latitude,
			"longitude": longitude,
		}).Info("Received image upload request")

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "An internal server error occurred during pothole detection.", err)
			return
		}
		defer file.Close()

		fileBytes, err := io.ReadAll(file)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "An internal server error occurred during pothole detection.", err)
			return
		}
		if len(fileBytes) == 0 {
			respondError(c, http.StatusBadRequest, "File content is empty", nil)
			return
		}

		result, err := detection.Detect(ctx, fileBytes, latitude, longitude)
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeDecode) {
				respondError(c, http.StatusBadRequest, "Invalid image format or failed to decode", err)
				return
			}
			respondError(c, http.StatusInternalServerError, "An internal server error occurred during pothole detection.", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"detections":         result.DetectionsCount,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Detection completed successfully")
		c.JSON(http.StatusOK, result)
	}
}

func sendEmail(report service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "No data provided", err)
			return
		}
		if req.Latitude == "" {
			req.Latitude = "Unknown"
		}
		if req.Longitude == "" {
			req.Longitude = "Unknown"
		}

		userID := c.GetHeader("User-Id")
		if userID == "" {
			respondError(c, http.StatusBadRequest, "User ID is required", nil)
			return
		}

		result, err := report.SendReport(c.Request.Context(), service.ReportRequest{
			UserID:    userID,
			Message:   req.Message,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			ImageID:   req.ImageID,
		})
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), appMessage(err), err)
			return
		}

		if !result.ComplaintLogged {
			c.JSON(http.StatusMultiStatus, gin.H{
				"success":      true,
				"message":      "Email sent, but failed to log complaint history.",
				"complaint_id": nil,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"message":      "Email sent and complaint logged successfully",
			"complaint_id": result.ComplaintID,
		})
	}
}

func getLocations(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		locations, err := users.Locations(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to fetch pothole locations", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"locations": locations})
	}
}

func login(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}

		userID, err := users.Login(c.Request.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			c.JSON(apperrors.GetStatusCode(err), gin.H{"message": appMessage(err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user_id": userID})
	}
}

func register(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}

		userID, err := users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			c.JSON(apperrors.GetStatusCode(err), gin.H{"message": appMessage(err)})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user_id": userID})
	}
}

func getProfile(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Profile(c.Request.Context(), c.Param("user_id"))
		if err != nil {
			c.JSON(apperrors.GetStatusCode(err), gin.H{"message": appMessage(err)})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func updateProfile(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProfileUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}

		if err := users.UpdateProfile(c.Request.Context(), c.Param("user_id"), req.Name, req.Email); err != nil {
			c.JSON(apperrors.GetStatusCode(err), gin.H{"message": appMessage(err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully."})
	}
}

func getComplaints(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		complaints, err := users.Complaints(c.Request.Context(), c.Param("user_id"))
		if err != nil {
			c.JSON(apperrors.GetStatusCode(err), gin.H{"message": appMessage(err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"complaints": complaints})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// appMessage surfaces the AppError message without the cause detail; the
// full error goes to logs only.
func appMessage(err error) string {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.Message
	}
	return "An internal server error occurred."
}

func respondError(c *gin.Context, code int, message string, err error) {
	entry := logger.WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error("Request failed: " + message)

	c.AbortWithStatusJSON(code, gin.H{"error": message})
}
