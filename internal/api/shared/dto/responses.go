package dto

// QueryEntriesResponse represents a page of registry entries
type QueryEntriesResponse struct {
	Entries []RegistryEntryResponse `json:"entries"`
	// NextCursor is passed back as the cursor of the following request
	NextCursor *string `json:"next_cursor"`
}

// HealthResponse represents the health endpoint body
type HealthResponse struct {
	Status string `json:"status"`
}
