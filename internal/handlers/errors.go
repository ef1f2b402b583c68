// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/localshop-backend/internal/i18n"
	"github.com/javajoker/localshop-backend/internal/services"
	"github.com/javajoker/localshop-backend/internal/utils"
)

type errorMapping struct {
	status int
	code   string
	key    string
}

var sentinelErrors = []struct {
	err error
	errorMapping
}{
	{services.ErrUnauthenticated, errorMapping{http.StatusUnauthorized, "UNAUTHENTICATED", i18n.KeyAuthRequired}},
	{services.ErrForbidden, errorMapping{http.StatusForbidden, "FORBIDDEN", i18n.KeyAdminAccessDenied}},
	{services.ErrInvalidCredentials, errorMapping{http.StatusUnauthorized, "INVALID_CREDENTIALS", i18n.KeyAuthInvalidCredentials}},
	{services.ErrInvalidToken, errorMapping{http.StatusUnauthorized, "INVALID_TOKEN", i18n.KeyAuthInvalidToken}},
	{services.ErrAccountDisabled, errorMapping{http.StatusForbidden, "ACCOUNT_DISABLED", i18n.KeyAuthAccountDisabled}},
	{services.ErrEmailTaken, errorMapping{http.StatusConflict, "EMAIL_TAKEN", i18n.KeyAuthUserExists}},
	{services.ErrUserNotFound, errorMapping{http.StatusNotFound, "USER_NOT_FOUND", i18n.KeyUserNotFound}},
	{services.ErrNoUpdateFields, errorMapping{http.StatusBadRequest, "VALIDATION_ERROR", i18n.KeyUserNoUpdateField}},
	{services.ErrSelfDemoteForbidden, errorMapping{http.StatusBadRequest, "SELF_DEMOTE_FORBIDDEN", i18n.KeyUserSelfDemote}},
	{services.ErrSelfDisableForbidden, errorMapping{http.StatusBadRequest, "SELF_DISABLE_FORBIDDEN", i18n.KeyUserSelfDisable}},
	{services.ErrLastAdminForbidden, errorMapping{http.StatusBadRequest, "LAST_ADMIN_FORBIDDEN", i18n.KeyUserLastAdmin}},
	{services.ErrProductNotFound, errorMapping{http.StatusNotFound, "PRODUCT_NOT_FOUND", i18n.KeyProductNotFound}},
	{services.ErrOrderNotFound, errorMapping{http.StatusNotFound, "ORDER_NOT_FOUND", i18n.KeyOrderNotFound}},
	{services.ErrPaymentsDisabled, errorMapping{http.StatusServiceUnavailable, "PAYMENTS_DISABLED", i18n.KeyPaymentDisabled}},
	{services.ErrOrderNotPayable, errorMapping{http.StatusConflict, "ORDER_NOT_PAYABLE", i18n.KeyPaymentNotPayable}},
	{services.ErrPaymentNotCompleted, errorMapping{http.StatusConflict, "PAYMENT_NOT_COMPLETED", i18n.KeyPaymentNotCompleted}},
}

// respondServiceError writes the client-facing form of err. Anything not
// recognised is logged and reported as a generic internal error.
func respondServiceError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var (
		stockErr      *services.InsufficientStockError
		validationErr *services.ValidationError
		transitionErr *services.InvalidTransitionError
	)
	switch {
	case errors.As(err, &stockErr):
		utils.ErrorResponse(c, http.StatusBadRequest, "INSUFFICIENT_STOCK",
			i18n.T(lang, i18n.KeyOrderInsufficientStock, stockErr.ProductName),
			gin.H{"productName": stockErr.ProductName})
		return
	case errors.As(err, &validationErr):
		utils.ValidationErrorResponse(c, []utils.ValidationError{{
			Field:   validationErr.Field,
			Tag:     "invalid",
			Message: validationErr.Error(),
		}})
		return
	case errors.As(err, &transitionErr):
		utils.ErrorResponse(c, http.StatusConflict, "INVALID_STATUS_TRANSITION",
			i18n.T(lang, i18n.KeyOrderInvalidTransition, transitionErr.From, transitionErr.To), nil)
		return
	}

	for _, known := range sentinelErrors {
		if errors.Is(err, known.err) {
			utils.ErrorResponse(c, known.status, known.code, i18n.T(lang, known.key), nil)
			return
		}
	}

	logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
	utils.InternalErrorResponse(c)
}

// bindJSON decodes and validates the body into req, writing the 400
// response itself on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

// pathID parses the :id parameter; a malformed id is reported as notFound.
func pathID(c *gin.Context, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondServiceError(c, notFound)
		return uuid.Nil, false
	}
	return id, true
}

// currentUserID is only empty when a route forgot AuthRequired.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := utils.GetUserIDFromContext(c)
	if !ok {
		respondServiceError(c, services.ErrUnauthenticated)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondServiceError(c, services.ErrUnauthenticated)
		return uuid.Nil, false
	}
	return id, true
}
