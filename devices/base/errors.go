package base

import (
	"errors"
	"fmt"
)

var ErrNoDevice = errors.New("no device")
var ErrNotFound = errors.New("controller not found")
var ErrNotEnabled = errors.New("controller not enabled")
var ErrUnmapped = errors.New("register window not mapped")
var ErrNotOwner = errors.New("controller owned by another binding")

type InitError struct {
	Ctlr string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%s: init failed: %v", e.Ctlr, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
