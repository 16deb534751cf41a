// services/outcomes.go
package services

// Fixed economy values, carried over from the original deployment.
const (
	StartingPoints   = 20 // granted via the users table default on first insert
	ReferralReward   = 4
	AccountCost      = 2
	NormalKeyPoints  = 15
	PremiumKeyPoints = 35
)

// ClaimStatus is the outcome of a stock claim attempt.
type ClaimStatus string

const (
	ClaimUserNotFound       ClaimStatus = "user_not_found"
	ClaimInsufficientPoints ClaimStatus = "insufficient_points"
	ClaimOutOfStock         ClaimStatus = "out_of_stock"
	ClaimSuccess            ClaimStatus = "success"
)

// ClaimResult is returned by ClaimService.ClaimAccount. Account and
// RemainingPoints are only meaningful when Status is ClaimSuccess.
type ClaimResult struct {
	Status          ClaimStatus `json:"status"`
	Account         string      `json:"account,omitempty"`
	RemainingPoints int         `json:"remaining_points"`
}

// RedeemStatus is the outcome of a key redemption attempt.
type RedeemStatus string

const (
	RedeemNotFound       RedeemStatus = "not_found"
	RedeemAlreadyClaimed RedeemStatus = "already_claimed"
	RedeemSuccess        RedeemStatus = "success"
)

// RedeemResult is returned by KeyService.RedeemKey.
type RedeemResult struct {
	Status        RedeemStatus `json:"status"`
	PointsAwarded int          `json:"points_awarded"`
}

// ReferralStatus is the outcome of recording a referral.
type ReferralStatus string

const (
	// ReferralCredited means the referral row was inserted and the referrer
	// received the reward.
	ReferralCredited ReferralStatus = "credited"
	// ReferralDuplicate means the referred user was already credited to
	// someone; the call is a no-op. Rendered silently today, but kept as a
	// distinct variant so callers could surface it later.
	ReferralDuplicate ReferralStatus = "duplicate"
)

// ReferralResult is returned by ReferralService.RecordReferral.
type ReferralResult struct {
	Status ReferralStatus `json:"status"`
}
