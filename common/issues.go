package common

import (
	"errors"
	"fmt"
)

// Code identifies validation errors, warnings and recoverable failures
// reported by the engine. Values are stable and are handed to UI as is.
type Code string

const (
	CodeInvalidFileType         Code = "INVALID_FILE_TYPE"
	CodeFileTooLarge            Code = "FILE_TOO_LARGE"
	CodeCropTooSmall            Code = "CROP_TOO_SMALL"
	CodeInvalidCrop             Code = "INVALID_CROP"
	CodeNoLogo                  Code = "NO_LOGO"
	CodeNoCrop                  Code = "NO_CROP"
	CodeNoPreview               Code = "NO_PREVIEW"
	CodePreviewRenderFailed     Code = "PREVIEW_RENDER_FAILED"
	CodeIncompleteCustomization Code = "INCOMPLETE_CUSTOMIZATION"
	CodeBundleFull              Code = "BUNDLE_FULL"
	CodeBundleEmpty             Code = "BUNDLE_EMPTY"
	CodeInvalidBundleName       Code = "INVALID_BUNDLE_NAME"
	CodeInvalidQuantity         Code = "INVALID_QUANTITY"
	CodeInvalidPrintArea        Code = "INVALID_PRINT_AREA"
	CodeProductNotCustomizable  Code = "PRODUCT_NOT_CUSTOMIZABLE"
	CodeProductNotFound         Code = "PRODUCT_NOT_FOUND"

	// warnings, never block progress
	CodeSmallLogo       Code = "SMALL_LOGO"
	CodeLowResolution   Code = "LOW_RESOLUTION"
	CodeNeedsManualCrop Code = "NEEDS_MANUAL_CROP"
)

// Issue is a single error or warning entry attached to a field.
type Issue struct {
	Code  Code   `json:"code"`
	Field string `json:"field"`
}

func (i Issue) String() string {
	if len(i.Field) == 0 {
		return string(i.Code)
	}
	return string(i.Code) + "(" + i.Field + ")"
}

// Error is returned by engine operations when action cannot proceed. All
// engine errors are local and recoverable.
type Error struct {
	Code  Code
	Field string
	Err   error
}

// NewError creates Error with optional message describing details.
func NewError(code Code, field, format string, args ...any) *Error {
	e := &Error{Code: code, Field: field}
	if len(format) > 0 {
		e.Err = fmt.Errorf(format, args...)
	}
	return e
}

// WrapError creates Error keeping original cause.
func WrapError(code Code, field string, err error) *Error {
	return &Error{Code: code, Field: field, Err: err}
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if len(e.Field) > 0 {
		msg += " [" + e.Field + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Issue converts error to issue entry for result reporting.
func (e *Error) Issue() Issue {
	return Issue{Code: e.Code, Field: e.Field}
}

// CodeOf extracts code from error chain, returns empty code for foreign
// errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether error chain carries engine error with given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
