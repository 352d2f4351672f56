package service

import "errors"

var (
	ErrTableNotFound       = errors.New("table not found")
	ErrTableInUse          = errors.New("table still has orders")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderReleased       = errors.New("order already released")
	ErrOrderPaid           = errors.New("order already paid")
	ErrOrderLocked         = errors.New("order already went through the kitchen")
	ErrNotPrepared         = errors.New("order must be prepared before it is served")
	ErrAlwaysPrepared      = errors.New("product is always prepared")
	ErrInvalidQuantity     = errors.New("quantity must not be negative")
	ErrProductNotFound     = errors.New("product not found")
	ErrExtraNotAvailable   = errors.New("extra not available for this product")
	ErrNothingToRelease    = errors.New("table has no active orders")
	ErrNothingToLiquidate  = errors.New("no released orders to liquidate")
	ErrPartialLiquidation  = errors.New("some released orders could not be removed")
	ErrLiquidationNotFound = errors.New("liquidation not found")
	ErrUnknownKind         = errors.New("unknown catalog kind")
	ErrInvalidRecord       = errors.New("invalid catalog record")
	ErrLoginTaken          = errors.New("login already exists")
	ErrInvalidCredentials  = errors.New("invalid login or password")
)
