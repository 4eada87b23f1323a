package domain

import (
	"fmt"
	"strings"
	"time"
)

// Network represents the Cardano network a registry source lives on
type Network string

const (
	NetworkMainnet Network = "MAINNET"
	NetworkPreview Network = "PREVIEW"
	NetworkPreprod Network = "PREPROD"
)

// IsValidNetwork checks if a network is valid
func IsValidNetwork(network Network) bool {
	return network == NetworkMainnet ||
		network == NetworkPreview ||
		network == NetworkPreprod
}

// RegistryType represents the kind of ledger registry a source points to
type RegistryType string

const (
	RegistryTypeCardanoV1 RegistryType = "WEB3_CARDANO_V1"
)

// IsValidRegistryType checks if a registry type is supported
func IsValidRegistryType(t RegistryType) bool {
	return t == RegistryTypeCardanoV1
}

// EntryStatus represents the lifecycle status of a registry entry
type EntryStatus string

const (
	EntryStatusOnline       EntryStatus = "ONLINE"
	EntryStatusOffline      EntryStatus = "OFFLINE"
	EntryStatusDeregistered EntryStatus = "DEREGISTERED"
)

// IsValidEntryStatus checks if a status is valid
func IsValidEntryStatus(status EntryStatus) bool {
	return status == EntryStatusOnline ||
		status == EntryStatusOffline ||
		status == EntryStatusDeregistered
}

// LiveEntryStatuses are the statuses an entry can still move between
var LiveEntryStatuses = []EntryStatus{EntryStatusOnline, EntryStatusOffline}

// PaymentType represents the settlement rail a payment identifier belongs to
type PaymentType string

const (
	PaymentTypeCardanoV1 PaymentType = "WEB3_CARDANO_V1"
)

// SupportedPaymentTypes lists the payment types the registry can resolve
var SupportedPaymentTypes = []PaymentType{PaymentTypeCardanoV1}

// IsSupportedPaymentType checks if a payment type is supported
func IsSupportedPaymentType(t PaymentType) bool {
	for _, s := range SupportedPaymentTypes {
		if s == t {
			return true
		}
	}
	return false
}

// ResumeMissPolicy controls what the sync engine does when the stored last
// identifier is absent from the resume page
type ResumeMissPolicy string

const (
	// ResumeMissReprocessPage treats the whole resume page as new work
	ResumeMissReprocessPage ResumeMissPolicy = "reprocess_page"
	// ResumeMissRescan restarts the source from page 1
	ResumeMissRescan ResumeMissPolicy = "rescan"
)

// IsValidResumeMissPolicy checks if a resume miss policy is valid
func IsValidResumeMissPolicy(p ResumeMissPolicy) bool {
	return p == ResumeMissReprocessPage || p == ResumeMissRescan
}

// EntryEventType represents the type of entry lifecycle event
type EntryEventType string

const (
	EntryEventRegistered   EntryEventType = "entry.registered"
	EntryEventUpdated      EntryEventType = "entry.updated"
	EntryEventDeregistered EntryEventType = "entry.deregistered"
)

// EntryEvent is published whenever the mirror creates, refreshes or retires an entry
type EntryEvent struct {
	ID                 string         `json:"id"`
	Type               EntryEventType `json:"type"`
	Network            Network        `json:"network"`
	RegistryType       RegistryType   `json:"registry_type"`
	RegistryIdentifier string         `json:"registry_identifier"` // policy id
	AssetIdentifier    string         `json:"asset_identifier"`
	EntryID            uint64         `json:"entry_id"`
	Status             EntryStatus    `json:"status"`
	OccurredAt         time.Time      `json:"occurred_at"`
}

// Valid checks the fields required to route and consume the event
func (e *EntryEvent) Valid() bool {
	if e.ID == "" || e.AssetIdentifier == "" || e.RegistryIdentifier == "" {
		return false
	}
	if !IsValidNetwork(e.Network) || !IsValidRegistryType(e.RegistryType) {
		return false
	}

	switch e.Type {
	case EntryEventRegistered, EntryEventUpdated:
		return e.Status == EntryStatusOnline || e.Status == EntryStatusOffline
	case EntryEventDeregistered:
		return e.Status == EntryStatusDeregistered
	default:
		return false
	}
}

// Subject returns the messaging subject the event is published on,
// e.g. "registry.mainnet.entry.registered"
func (e *EntryEvent) Subject() string {
	return fmt.Sprintf("registry.%s.%s", strings.ToLower(string(e.Network)), e.Type)
}
