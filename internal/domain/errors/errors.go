// Package errors defines the domain failures of the payment and analysis flows.
// Each one carries a pkg/errors code that decides its HTTP status.
package errors

import (
	apperrors "github.com/Ponna-create/ai-agent-vs-script-validator/pkg/errors"
)

// genericVerificationMessage is shared by every payment verification failure so
// clients cannot tell a bad signature from an unknown or uncaptured order.
const genericVerificationMessage = "payment verification failed"

// Credential and configuration failures.
var (
	ErrUnauthenticated    = apperrors.NewAppError(apperrors.ErrUnauthenticated, "authentication required", nil)
	ErrInvalidCredentials = apperrors.NewAppError(apperrors.ErrUnauthenticated, "invalid email or password", nil)
	ErrForbidden          = apperrors.NewAppError(apperrors.ErrUnauthorized, "access denied", nil)
	ErrMisconfigured      = apperrors.NewAppError(apperrors.ErrMisconfigured, "service misconfigured", nil)
	ErrEmailTaken         = apperrors.NewAppError(apperrors.ErrConflict, "email already registered", nil)
	ErrUserNotFound       = apperrors.NewAppError(apperrors.ErrNotFound, "user not found", nil)
)

// Ledger failures.
var (
	ErrPaymentNotFound    = apperrors.NewAppError(apperrors.ErrNotFound, "payment not found", nil)
	ErrDuplicateOrder     = apperrors.NewAppError(apperrors.ErrConflict, "order already exists", nil)
	ErrInvalidTransition  = apperrors.NewAppError(apperrors.ErrConflict, "payment state does not allow this operation", nil)
	ErrNoCreditsRemaining = apperrors.NewAppError(apperrors.ErrConflict, "no credits remaining", nil)
	ErrPaymentRefunded    = apperrors.NewAppError(apperrors.ErrConflict, "payment has been refunded", nil)
	ErrAlreadyRefunded    = apperrors.NewAppError(apperrors.ErrConflict, "payment already refunded", nil)
	ErrNotEligible        = apperrors.NewAppError(apperrors.ErrInvalidArgument, "payment is not eligible for refund", nil)
)

// Orchestrator failures.
var (
	ErrInvalidAmount       = apperrors.NewAppError(apperrors.ErrInvalidArgument, "invalid amount", nil)
	ErrInvalidCurrency     = apperrors.NewAppError(apperrors.ErrInvalidArgument, "unsupported currency", nil)
	ErrGatewayUnavailable  = apperrors.NewAppError(apperrors.ErrUpstreamUnavailable, "payment gateway unavailable", nil)
	ErrSignatureMismatch   = apperrors.NewAppError(apperrors.ErrInvalidArgument, genericVerificationMessage, nil)
	ErrNotCaptured         = apperrors.NewAppError(apperrors.ErrInvalidArgument, genericVerificationMessage, nil)
	ErrOrderNotFound       = apperrors.NewAppError(apperrors.ErrInvalidArgument, genericVerificationMessage, nil)
	ErrRefundWindowExpired = apperrors.NewAppError(apperrors.ErrInvalidArgument, "refund window has expired", nil)
	ErrAlreadyAnalyzed     = apperrors.NewAppError(apperrors.ErrConflict, "payment has already been used for an analysis", nil)
)

// Webhook failures.
var (
	ErrWebhookSignature = apperrors.NewAppError(apperrors.ErrInvalidArgument, "invalid webhook signature", nil)
	ErrWebhookPayload   = apperrors.NewAppError(apperrors.ErrInvalidArgument, "invalid webhook payload", nil)
)

// Analysis failures.
var (
	ErrDescriptionTooShort = apperrors.NewAppError(apperrors.ErrInvalidArgument, "project description is too short", nil)
	ErrDescriptionTooLong  = apperrors.NewAppError(apperrors.ErrInvalidArgument, "project description is too long", nil)
	ErrAnalysisFailed      = apperrors.NewAppError(apperrors.ErrBadGateway, "analysis failed, no credit was used", nil)
	ErrAnalysisNotFound    = apperrors.NewAppError(apperrors.ErrNotFound, "analysis not found", nil)
)

// LLM boundary failures. They are translated to ErrAnalysisFailed before reaching clients.
var (
	ErrLLMTimeout         = apperrors.New("llm request timed out")
	ErrLLMRateLimited     = apperrors.New("llm rate limited")
	ErrLLMInvalidResponse = apperrors.New("llm returned an invalid response")
	ErrLLMUnavailable     = apperrors.New("llm unavailable")
)
