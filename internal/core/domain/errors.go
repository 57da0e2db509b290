package domain

import "errors"

var (
	// Issue-time failures
	ErrUnknownUser       = errors.New("unknown user")
	ErrUnsupportedIntent = errors.New("unsupported intent")

	// Account store
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")

	// Grammar registry
	ErrGrammarNotFound = errors.New("grammar not found")
	ErrGrammarUsed     = errors.New("grammar already used")
)
