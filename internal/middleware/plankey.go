package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smmonirhasan92/man2man-sub004/internal/models"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
)

const PlanKeyHeader = "x-usa-key"

// PlanKeyRequired resolves the synthetic identity header to the caller's
// active plan. The key is a capability token: it must belong to the
// authenticated user and the plan must be unexpired. Runs after AuthRequired.
func PlanKeyRequired(plans *repository.PlanRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(PlanKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + PlanKeyHeader + " header"})
			return
		}
		up, err := plans.GetUserPlanBySyntheticPhone(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid plan key"})
			return
		}
		if up.UserID != GetUserID(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "plan key does not belong to you"})
			return
		}
		if up.Expired(time.Now()) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "plan expired"})
			return
		}
		c.Set("user_plan", up)
		c.Next()
	}
}

// GetUserPlan returns the plan binding resolved by PlanKeyRequired.
func GetUserPlan(c *gin.Context) *models.UserPlan {
	v, _ := c.Get("user_plan")
	if v == nil {
		return nil
	}
	return v.(*models.UserPlan)
}
