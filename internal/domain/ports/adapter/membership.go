package adapter

import "context"

// MembershipChecker fails closed: any lookup error means false.
type MembershipChecker interface {
	IsMember(ctx context.Context, userID int64) bool
}
