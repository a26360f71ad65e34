// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Identity Constraints

const (
	// MinHandleLength is the shortest handle a user may register with.
	MinHandleLength = 3

	// MaxHandleLength bounds handles to keep channel URLs readable.
	MaxHandleLength = 30

	// MinPasswordLength is the minimum accepted password length.
	// Length is the only enforced complexity rule; bcrypt does the rest.
	MinPasswordLength = 8

	// MaxDisplayNameLength bounds the free-form display name.
	MaxDisplayNameLength = 80
)
