package cluster

import (
	"errors"
	"net/http"
)

// ErrorClass discriminates cluster interface failures. The values match
// the exception_class names the scheduler interface reports in FAIL
// responses.
type ErrorClass string

const (
	ClassInterface        ErrorClass = "ClusterInterfaceError"
	ClassNoSuchUser       ErrorClass = "NoSuchUserError"
	ClassNoSuchJob        ErrorClass = "NoSuchJobError"
	ClassNoSuchQueue      ErrorClass = "NoSuchQueueError"
	ClassNoSuchHost       ErrorClass = "NoSuchHostError"
	ClassNoSuchResource   ErrorClass = "ResourceDoesntExistError"
	ClassPermissionDenied ErrorClass = "PermissionDeniedError"
	ClassJobSubmit        ErrorClass = "JobSubmitError"
)

var knownClasses = map[ErrorClass]bool{
	ClassInterface:        true,
	ClassNoSuchUser:       true,
	ClassNoSuchJob:        true,
	ClassNoSuchQueue:      true,
	ClassNoSuchHost:       true,
	ClassNoSuchResource:   true,
	ClassPermissionDenied: true,
	ClassJobSubmit:        true,
}

// ClassFromName maps a reported exception_class to an ErrorClass,
// falling back to ClassInterface for anything unrecognized.
func ClassFromName(name string) ErrorClass {
	if c := ErrorClass(name); knownClasses[c] {
		return c
	}
	return ClassInterface
}

// Error is a failed cluster operation. Message is display-ready text;
// Err holds the transport error when the interface itself was
// unreachable.
type Error struct {
	Class   ErrorClass
	Message string
	Err     error
}

func NewError(class ErrorClass, message string) *Error {
	return &Error{Class: class, Message: message}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Class)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus is the response status the console serves for this error.
func (e *Error) HTTPStatus() int {
	switch e.Class {
	case ClassNoSuchUser, ClassNoSuchJob, ClassNoSuchQueue, ClassNoSuchHost, ClassNoSuchResource:
		return http.StatusNotFound
	case ClassPermissionDenied:
		return http.StatusForbidden
	case ClassJobSubmit:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// FailureKind distinguishes failures to reach the scheduler interface
// ("network") from requests the interface rejected ("rejected").
func FailureKind(err error) string {
	if ce, ok := errors.AsType[*Error](err); ok && ce.Err == nil {
		return "rejected"
	}
	return "network"
}
