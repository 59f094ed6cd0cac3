package handlers

import (
	"errors"
	"net/http"

	"taskList/internal/logger"
	"taskList/internal/service"

	"go.uber.org/zap"
)

func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

// alertMessage - текст блокирующего уведомления на странице
func alertMessage(err *service.BusinessError) string {
	if err.Details["field"] == "priority" {
		return "Please choose a valid priority for the task."
	}
	return "Please enter a description and a deadline for the task."
}
