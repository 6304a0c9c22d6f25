package middleware

import (
	"net/http"

	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/utils"
)

// RequireAdmin guards admin routes with a bearer JWT carrying role=admin.
func RequireAdmin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
					Code:    "admin_auth_unconfigured",
					Message: "Admin authentication is not configured",
				})
				return
			}

			claims, err := utils.VerifyToken(r, secret)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "unauthorized",
					Message: err.Error(),
				})
				return
			}

			if role, _ := claims["role"].(string); role != "admin" {
				utils.JSON(w, http.StatusForbidden, models.ErrorResponse{
					Code:    "forbidden",
					Message: "Admin role required",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
