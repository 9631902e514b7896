package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clubworks/memberpay/internal/app/service/identity"
	"github.com/clubworks/memberpay/internal/app/service/payment"
	"github.com/clubworks/memberpay/internal/app/service/profile"
	"github.com/clubworks/memberpay/pkg/logctx"
	"github.com/clubworks/memberpay/pkg/types"
)

type userDetailsUser struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	Name             string                 `json:"name"`
	Phone            string                 `json:"phone"`
	MembershipStatus types.MembershipStatus `json:"membership_status"`
}

// @Summary      User Details
// @Description  Returns the authenticated user's profile and payment history. A missing profile is not an error: the webhook may not have landed yet.
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/user/details [get]
func ApiUserDetails(idSvc *identity.Service, profSvc *profile.Service, paySvc *payment.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identityID := c.GetString("identityID")
		email := c.GetString("identityEmail")

		prof, err := profSvc.GetByID(c.Request.Context(), identityID)
		if err != nil {
			logctx.FromGin(c, log).Errorw("user_details_profile_error", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
			return
		}

		user := userDetailsUser{ID: identityID, Email: email, MembershipStatus: types.MembershipStatusInactive}
		if prof != nil {
			user.Name = prof.Name
			user.Phone = prof.Phone
			user.MembershipStatus = prof.MembershipStatus
		} else if ident, err := idSvc.GetByID(c.Request.Context(), identityID); err == nil {
			// Fall back to auth metadata while the profile is pending.
			if md := ident.Metadata.Data(); md != nil {
				user.Name = md.Name
				user.Phone = md.Phone
			}
		}

		payments, err := paySvc.ListByEmail(c.Request.Context(), email)
		if err != nil {
			logctx.FromGin(c, log).Errorw("user_details_payments_error", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payments"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user, "payments": payments})
	}
}
