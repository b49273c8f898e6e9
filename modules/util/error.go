// Copyright 2022 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package util

import (
	"errors"
	"fmt"
)

// Error classes of the service, test with errors.Is.
// The HTTP API turns ErrNotExist into 404 and ErrInvalidArgument into 400.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotExist        = errors.New("resource does not exist")
)

// SilentWrap is an error whose message is Message, while errors.Is matches Err.
// It classifies an error without adding the class name to the text.
type SilentWrap struct {
	Message string
	Err     error
}

func (w SilentWrap) Error() string {
	return w.Message
}

func (w SilentWrap) Unwrap() error {
	return w.Err
}

// NewSilentWrapErrorf formats message like fmt.Sprintf and classifies the result as class
func NewSilentWrapErrorf(class error, message string, args ...any) error {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	return SilentWrap{Message: message, Err: class}
}

// NewInvalidArgumentErrorf returns an error classified as ErrInvalidArgument
func NewInvalidArgumentErrorf(message string, args ...any) error {
	return NewSilentWrapErrorf(ErrInvalidArgument, message, args...)
}

// NewNotExistErrorf returns an error classified as ErrNotExist
func NewNotExistErrorf(message string, args ...any) error {
	return NewSilentWrapErrorf(ErrNotExist, message, args...)
}
