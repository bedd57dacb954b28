package auth

import (
	"errors"
	"fmt"
)

// FailureCode is the value of the ?error= parameter a failed login lands on.
type FailureCode string

const (
	FailTokenExchange   FailureCode = "token_exchange_failed" // provider rejected the code exchange
	FailNoAccessToken   FailureCode = "no_access_token"       // exchange succeeded without a token
	FailUserData        FailureCode = "user_data_failed"      // profile endpoint answered non-OK
	FailInvalidUserData FailureCode = "invalid_user_data"     // profile lacks the identity field
	FailAuth            FailureCode = "auth_failed"           // everything else
)

// FlowError is a login failure with a known code.
type FlowError struct {
	Code     FailureCode
	Provider string
	Err      error
}

func (e *FlowError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("auth: %s login: %s", e.Provider, e.Code)
	}
	return fmt.Sprintf("auth: %s login: %s: %v", e.Provider, e.Code, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

func flowError(provider string, code FailureCode, err error) *FlowError {
	return &FlowError{Code: code, Provider: provider, Err: err}
}

// CodeOf extracts the FailureCode from err. Errors that carry none, such as
// network failures or malformed JSON, are FailAuth.
func CodeOf(err error) FailureCode {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return FailAuth
}
