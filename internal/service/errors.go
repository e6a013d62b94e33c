package service

import "github.com/insany/shop/internal/domain"

// Cross-service errors.
var (
	ErrCartEmpty       = domain.Errorf(domain.EINVALID, "", "Cart is empty")
	ErrCheckoutFailed  = domain.Errorf(domain.EPAYMENT, "", "Unable to start checkout. Please try again.")
	ErrProductArchived = domain.Errorf(domain.ENOTFOUND, "", "Product is no longer available")
)
