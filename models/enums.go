package models

import (
	"fmt"
	"strings"
)

// SaleChannel is the revenue channel a sale line was registered under.
type SaleChannel string

const (
	ChannelInvoiced SaleChannel = "I"
	ChannelPOS      SaleChannel = "P"
	ChannelExchange SaleChannel = "X"
)

func ParseSaleChannel(code string) (SaleChannel, error) {
	switch SaleChannel(strings.ToUpper(strings.TrimSpace(code))) {
	case ChannelInvoiced:
		return ChannelInvoiced, nil
	case ChannelPOS:
		return ChannelPOS, nil
	case ChannelExchange:
		return ChannelExchange, nil
	default:
		return "", fmt.Errorf("unknown sale channel %q", code)
	}
}

const (
	SyncKindDaily   = "daily"
	SyncKindMonthly = "monthly"
	SyncKindYearly  = "yearly"
)

const (
	SyncRunStatusQueued  = "queued"
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
	SyncRunStatusPartial = "partial"
)

const (
	SyncTriggeredManual    = "manual"
	SyncTriggeredScheduled = "scheduled"
)
