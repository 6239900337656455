package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route and retain them differently.
type EventCategory string

const (
	// CategorySecurity covers events relevant to security monitoring:
	// failed sign-ins, cleared sessions, sign-outs.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity: successful sign-ins,
	// refreshes, board writes.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It stays
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string        `json:"id"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	UserID    string        `json:"user_id,omitempty"`
	Email     string        `json:"email,omitempty"`
	Provider  string        `json:"provider,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Subject   string        `json:"subject,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	IP        string        `json:"ip,omitempty"`
	UserAgent string        `json:"user_agent,omitempty"`
	Browser   string        `json:"browser,omitempty"`
	OS        string        `json:"os,omitempty"`
}

// AuditEvent names an action.
type AuditEvent string

const (
	// Sign-in and account events
	EventSignInSucceeded AuditEvent = "sign_in_succeeded"
	EventSignInFailed    AuditEvent = "sign_in_failed"
	EventSignUp          AuditEvent = "sign_up"
	EventOtpSent         AuditEvent = "otp_sent"
	EventRedirectStarted AuditEvent = "redirect_sign_in_started"
	EventCodeExchanged   AuditEvent = "code_exchanged"
	EventEmailVerified   AuditEvent = "email_verified"
	EventSignOut         AuditEvent = "sign_out"

	// Failures of the non sign-in actions
	EventSignUpFailed       AuditEvent = "sign_up_failed"
	EventOtpFailed          AuditEvent = "otp_failed"
	EventRedirectFailed     AuditEvent = "redirect_sign_in_failed"
	EventCodeExchangeFailed AuditEvent = "code_exchange_failed"
	EventEmailVerifyFailed  AuditEvent = "email_verification_failed"
	EventSessionSetFailed   AuditEvent = "session_set_failed"

	// Session cookie lifecycle
	EventSessionRefreshed AuditEvent = "session_refreshed"
	EventSessionCleared   AuditEvent = "session_cleared"
	EventSessionSet       AuditEvent = "session_set"

	// Board events
	EventTaskCreated AuditEvent = "task_created"
	EventTaskDeleted AuditEvent = "task_deleted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventSignInFailed:       CategorySecurity,
	EventSignUpFailed:       CategorySecurity,
	EventOtpFailed:          CategorySecurity,
	EventRedirectFailed:     CategorySecurity,
	EventCodeExchangeFailed: CategorySecurity,
	EventEmailVerifyFailed:  CategorySecurity,
	EventSessionSetFailed:   CategorySecurity,
	EventSessionCleared:     CategorySecurity,
	EventSignOut:            CategorySecurity,
	EventSessionSet:         CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists or forwards events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is the narrow port services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
