package domain

const (
	// Ledger paging
	SYNC_PAGE_SIZE  = 100
	SWEEP_PAGE_SIZE = 50

	// Query limits
	DEFAULT_QUERY_LIMIT = 10
	MAX_QUERY_LIMIT     = 50

	// BURNED_QUANTITY is the on-ledger quantity of an asset that has been burned
	BURNED_QUANTITY = "0"

	// Health probe
	DEFAULT_AVAILABILITY_PATH = "/availability"
)
