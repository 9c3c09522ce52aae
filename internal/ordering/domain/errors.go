package domain

import "errors"

// Code classifies a domain error so adapters can map it to a transport status.
type Code string

const (
	CodeInvalidArgument    Code = "invalid_argument"
	CodeFailedPrecondition Code = "failed_precondition"
	CodeNotFound           Code = "not_found"
)

// User-facing messages.
const (
	MsgEmptyCart     = "장바구니가 비어있습니다."
	MsgOrderPlaced   = "주문이 완료되었습니다!"
	MsgLineNotFound  = "장바구니 항목을 찾을 수 없습니다."
	MsgOrderNotFound = "주문을 찾을 수 없습니다."
	MsgUnknownMenu   = "메뉴를 찾을 수 없습니다."
)

// Error is returned by every reducer that can reject an operation.
type Error struct {
	Code    Code
	Message string
	err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrUnknownMenuItem = errors.New("unknown menu item")
)

// NewError builds a domain error that matches sentinel with errors.Is and shows message to users.
func NewError(code Code, sentinel error, message string) *Error {
	return &Error{Code: code, Message: message, err: sentinel}
}

// CodeOf reports the code of a domain error, or "" when err is not one.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
