package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership-backend/internal/config"
	"membership-backend/internal/domain"
	"membership-backend/internal/service"
)

func TestPolicyFromConfig(t *testing.T) {
	t.Run("UnsetQuotaTakesDefault", func(t *testing.T) {
		policy := service.PolicyFromConfig(config.ApprovalConfig{LinkTTLDays: 7, RateLimitWindowDays: 30})
		assert.Equal(t, service.DefaultApprovalPolicy().RateLimitQuota, policy.RateLimitQuota)
		assert.Equal(t, 7*24*time.Hour, policy.LinkTTL)
	})

	t.Run("ZeroQuotaFreezesApprovals", func(t *testing.T) {
		quota := 0
		policy := service.PolicyFromConfig(config.ApprovalConfig{
			LinkTTLDays:         7,
			RateLimitWindowDays: 30,
			RateLimitQuota:      &quota,
			MaterializeAttempts: 1,
			SweepBatchSize:      100,
		})
		require.Equal(t, 0, policy.RateLimitQuota)

		f := newFixtureWithPolicy(t, policy)
		bob := f.addMember("bob@x.com", true)
		app := f.create(t, "alice@x.com", "bob@x.com")

		_, err := f.svc.ApproveApplication(f.ctx, app.Token, bob.ID, app.VerificationCode)
		assert.True(t, errors.Is(err, domain.ErrRateLimitExceeded), "unexpected error: %v", err)
	})
}
