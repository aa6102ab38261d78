package service

import (
	"membership-backend/internal/config"
	"membership-backend/internal/logger"
)

// PolicyFromConfig converts the approval section of the configuration.
func PolicyFromConfig(c config.ApprovalConfig) ApprovalPolicy {
	policy := ApprovalPolicy{
		LinkTTL:             c.LinkTTL(),
		RateLimitWindow:     c.RateLimitWindow(),
		RateLimitQuota:      DefaultApprovalPolicy().RateLimitQuota,
		MaterializeAttempts: c.MaterializeAttempts,
		SweepBatchSize:      c.SweepBatchSize,
	}
	if c.RateLimitQuota != nil {
		policy.RateLimitQuota = *c.RateLimitQuota
	}
	return policy
}

// NotifierFromConfig picks SendGrid when a key is configured and falls back to logging.
func NotifierFromConfig(c config.EmailConfig) Notifier {
	if c.SendGridAPIKey == "" {
		logger.Warn("SendGrid API key not configured, notifications will only be logged")
		return NewLogNotifier(c.ApprovalBaseURL)
	}
	return NewSendGridNotifier(c.SendGridAPIKey, c.FromEmail, c.FromName, c.ApprovalBaseURL)
}
