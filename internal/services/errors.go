// Package services defines the business logic for the marketplace: accounts,
// the shop directory, product search, distance evaluation, reviews, chat, and
// the product request workflow. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import "errors"

// Account-related errors.
var (
	// ErrInvalidMobile is returned when a mobile number is not a ten-digit
	// numeric string.
	ErrInvalidMobile = errors.New("mobile must be a 10-digit number")

	// ErrMobileTaken indicates that the mobile number is already registered,
	// as a buyer or as a shopkeeper.
	ErrMobileTaken = errors.New("mobile already registered")

	// ErrInvalidCredentials is returned on login when the mobile is unknown
	// or the password does not match. The two cases are deliberately not
	// distinguished.
	ErrInvalidCredentials = errors.New("invalid mobile or password")

	// ErrWeakPassword is returned when a registration password is shorter
	// than the minimum length.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
)

// Shop and product errors.
var (
	// ErrShopNotFound indicates that the requested shop does not exist.
	ErrShopNotFound = errors.New("shop not found")

	// ErrProductNotFound indicates that the product does not exist or does
	// not belong to the acting shop.
	ErrProductNotFound = errors.New("product not found")

	// ErrEmptyProductName is returned when a product is created or updated
	// with a blank name.
	ErrEmptyProductName = errors.New("product name is empty")

	// ErrInvalidPrice is returned when a product price is negative.
	ErrInvalidPrice = errors.New("price must not be negative")
)

// Review errors.
var (
	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrAlreadyReviewed is returned when a buyer reviews the same shop a
	// second time.
	ErrAlreadyReviewed = errors.New("shop already reviewed")
)

// Chat errors.
var (
	// ErrUserNotFound indicates that the addressed buyer account does not
	// exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmptyMessage is returned when a chat message has no content.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned when a chat message exceeds the maximum
	// configured length limit.
	ErrMessageTooLong = errors.New("message too long")
)

// Request workflow errors.
var (
	// ErrRequestNotFound indicates that the product request does not exist
	// or is not accessible to the current account.
	ErrRequestNotFound = errors.New("request not found")

	// ErrRequestClosed is returned when a shop answers a request the buyer
	// already closed.
	ErrRequestClosed = errors.New("request is closed")

	// ErrDuplicateResponse is returned when a shop answers the same request
	// a second time.
	ErrDuplicateResponse = errors.New("request already answered")

	// ErrResponseNotFound indicates that the response does not exist or does
	// not belong to one of the buyer's requests.
	ErrResponseNotFound = errors.New("response not found")
)
