package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/feral-file/ff-agent-registry/internal/api/shared/errors"
	"github.com/feral-file/ff-agent-registry/internal/domain"
)

func intPtr(i int) *int { return &i }
func strPtr(s string) *string { return &s }

func TestQueryEntriesRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     QueryEntriesRequest
		wantErr bool
	}{
		{name: "network only", req: QueryEntriesRequest{Network: domain.NetworkMainnet}},
		{name: "missing network", req: QueryEntriesRequest{}, wantErr: true},
		{name: "unknown network", req: QueryEntriesRequest{Network: "TESTNET"}, wantErr: true},
		{name: "limit at bounds", req: QueryEntriesRequest{Network: domain.NetworkPreprod, Limit: intPtr(domain.MAX_QUERY_LIMIT)}},
		{name: "limit zero", req: QueryEntriesRequest{Network: domain.NetworkPreprod, Limit: intPtr(0)}, wantErr: true},
		{name: "limit too large", req: QueryEntriesRequest{Network: domain.NetworkPreprod, Limit: intPtr(domain.MAX_QUERY_LIMIT + 1)}, wantErr: true},
		{name: "numeric cursor", req: QueryEntriesRequest{Network: domain.NetworkPreview, Cursor: strPtr("42")}},
		{name: "non numeric cursor", req: QueryEntriesRequest{Network: domain.NetworkPreview, Cursor: strPtr("abc")}, wantErr: true},
		{name: "negative cursor", req: QueryEntriesRequest{Network: domain.NetworkPreview, Cursor: strPtr("-1")}, wantErr: true},
		{
			name: "deregistered status is a valid status",
			req: QueryEntriesRequest{
				Network: domain.NetworkMainnet,
				Filter:  &EntryFilter{Statuses: []domain.EntryStatus{domain.EntryStatusDeregistered}},
			},
		},
		{
			name: "unknown status",
			req: QueryEntriesRequest{
				Network: domain.NetworkMainnet,
				Filter:  &EntryFilter{Statuses: []domain.EntryStatus{"PAUSED"}},
			},
			wantErr: true,
		},
		{
			name: "capability without name",
			req: QueryEntriesRequest{
				Network: domain.NetworkMainnet,
				Filter:  &EntryFilter{Capability: &CapabilityFilter{Name: " ", Version: strPtr("1.0")}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, apierrors.ErrCodeValidationFailed, apiErr.Code)
		})
	}
}

func TestQueryEntriesRequest_ToQueryInput(t *testing.T) {
	body := `{
		"network": "PREPROD",
		"limit": 5,
		"cursor": "17",
		"filter": {
			"payment_types": ["WEB3_CARDANO_V1"],
			"statuses": ["ONLINE"],
			"registry_identifier": "policy1",
			"asset_identifier": "asset1",
			"tags": ["nlp"],
			"capability": {"name": " summarize ", "version": "2.0"}
		},
		"min_registry_date": "2026-01-02T03:04:05Z"
	}`

	var req QueryEntriesRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.NoError(t, req.Validate())

	input := req.ToQueryInput()
	assert.Equal(t, domain.NetworkPreprod, input.Network)
	assert.Equal(t, 5, input.Limit)
	require.NotNil(t, input.Cursor)
	assert.EqualValues(t, 17, *input.Cursor)
	assert.Equal(t, []domain.PaymentType{domain.PaymentTypeCardanoV1}, input.Filter.PaymentTypes)
	assert.Equal(t, []domain.EntryStatus{domain.EntryStatusOnline}, input.Filter.Statuses)
	assert.Equal(t, "policy1", *input.Filter.RegistryIdentifier)
	assert.Equal(t, "asset1", *input.Filter.AssetIdentifier)
	assert.Equal(t, []string{"nlp"}, input.Filter.Tags)
	assert.Equal(t, "summarize", *input.Filter.CapabilityName)
	assert.Equal(t, "2.0", *input.Filter.CapabilityVersion)
	require.NotNil(t, input.MinRegistryDate)
	assert.True(t, input.MinRegistryDate.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Nil(t, input.MinHealthCheckDate)
}

func TestQueryEntriesRequest_ToQueryInput_Defaults(t *testing.T) {
	req := QueryEntriesRequest{Network: domain.NetworkMainnet}

	input := req.ToQueryInput()
	assert.Zero(t, input.Limit)
	assert.Nil(t, input.Cursor)
	assert.Empty(t, input.Filter.PaymentTypes)
	assert.Nil(t, input.Filter.CapabilityName)
}
