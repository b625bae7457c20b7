package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	// lifecycle errors
	ErrAlreadyInitialized    = errors.New("marketplace already initialized")
	ErrAuctionNotFound       = errors.New("auction not found")
	ErrAuctionNotActive      = errors.New("auction not active")
	ErrAuctionNotEnded       = errors.New("auction not ended")
	ErrAuctionAlreadySettled = errors.New("auction already settled")
	ErrAuctionHasBids        = errors.New("auction has bids")
	ErrBidTooLow             = errors.New("bid below minimum")

	// authorization errors
	ErrNotAssetOwner          = errors.New("caller is not the asset owner")
	ErrNotAuctionSeller       = errors.New("caller is not the auction seller")
	ErrNotPlatformOwner       = errors.New("caller is not the platform owner")
	ErrNotApprovedForTransfer = errors.New("marketplace not approved for transfer")

	// validation errors
	ErrInvalidReservePrice   = errors.New("invalid reserve price")
	ErrInvalidDuration       = errors.New("invalid duration")
	ErrInvalidFeeBasisPoints = errors.New("invalid fee basis points")
	ErrAssetInvalid          = errors.New("invalid asset")
	ErrInvalidAddress        = errors.New("Invalid address")

	// funds errors
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTransferFailed      = errors.New("transfer failed")

	// arithmetic errors, amounts fail closed instead of wrapping
	ErrAmountOverflow   = errors.New("amount overflow")
	ErrAmountOutOfRange = errors.New("amount out of range")

	// ErrTxConflict will throw if a state transaction lost the commit race
	ErrTxConflict = errors.New("conflicting state transaction")
)
