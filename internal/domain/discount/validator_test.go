package discount

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	rule          *Rule
	err           error
	incrementErr  error
	incrementCode string
}

func (m *mockCouponRepo) FindByCode(_ context.Context, _ string) (*Rule, error) {
	return m.rule, m.err
}

func (m *mockCouponRepo) IncrementUses(_ context.Context, code string) error {
	m.incrementCode = code
	return m.incrementErr
}

func TestRepoValidator_Resolve(t *testing.T) {
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	pastTime := fixedNow.Add(-24 * time.Hour)
	futureTime := fixedNow.Add(24 * time.Hour)

	tests := []struct {
		name    string
		repo    *mockCouponRepo
		wantErr error
	}{
		{
			name: "valid code",
			repo: &mockCouponRepo{
				rule: &Rule{Code: "SAVE10", Type: TypePercentage, Value: decimal.NewFromInt(10)},
			},
		},
		{
			name:    "unknown code returns ErrInvalidCoupon",
			repo:    &mockCouponRepo{err: ErrInvalidCoupon},
			wantErr: ErrInvalidCoupon,
		},
		{
			name: "expired coupon (valid_until in past)",
			repo: &mockCouponRepo{
				rule: &Rule{Code: "OLD", Type: TypePercentage, Value: decimal.NewFromInt(10), ValidUntil: &pastTime},
			},
			wantErr: ErrCouponExpired,
		},
		{
			name: "coupon not yet valid (valid_from in future)",
			repo: &mockCouponRepo{
				rule: &Rule{Code: "FUTURE", Type: TypePercentage, Value: decimal.NewFromInt(10), ValidFrom: &futureTime},
			},
			wantErr: ErrCouponExpired,
		},
		{
			name: "coupon within valid window succeeds",
			repo: &mockCouponRepo{
				rule: &Rule{
					Code: "WINDOW", Type: TypePercentage, Value: decimal.NewFromInt(10),
					ValidFrom: &pastTime, ValidUntil: &futureTime,
				},
			},
		},
		{
			name: "usage limit reached",
			repo: &mockCouponRepo{
				rule: &Rule{Code: "LIMITED", Type: TypeFixed, Value: decimal.NewFromInt(5), MaxUses: 100, Uses: 100},
			},
			wantErr: ErrCouponUsageLimitReached,
		},
		{
			name: "usage under limit succeeds",
			repo: &mockCouponRepo{
				rule: &Rule{Code: "HASROOM", Type: TypeFixed, Value: decimal.NewFromInt(5), MaxUses: 100, Uses: 50},
			},
		},
		{
			name: "unlimited uses (max_uses=0) always succeeds",
			repo: &mockCouponRepo{
				rule: &Rule{Code: "UNLIMITED", Type: TypeFixed, Value: decimal.NewFromInt(5), Uses: 9999},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewRepoValidator(tt.repo)
			v.now = func() time.Time { return fixedNow }

			got, err := v.Resolve(context.Background(), "ANY")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				assert.Empty(t, tt.repo.incrementCode)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.repo.rule.Code, got.Code)
			assert.Equal(t, tt.repo.rule.Code, tt.repo.incrementCode)
		})
	}
}

func TestRepoValidator_LookupError(t *testing.T) {
	v := NewRepoValidator(&mockCouponRepo{err: errors.New("store unavailable")})

	_, err := v.Resolve(context.Background(), "ANY")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCoupon)
	assert.Contains(t, err.Error(), "lookup coupon")
}

func TestRepoValidator_IncrementUsesError(t *testing.T) {
	repo := &mockCouponRepo{
		rule:         &Rule{Code: "FAIL", Type: TypeFixed, Value: decimal.NewFromInt(5)},
		incrementErr: errors.New("store error"),
	}

	v := NewRepoValidator(repo)
	_, err := v.Resolve(context.Background(), "FAIL")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "increment coupon uses")
}
