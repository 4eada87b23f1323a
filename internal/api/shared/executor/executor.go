package executor

import (
	"context"
	"fmt"

	"github.com/feral-file/ff-agent-registry/internal/api/shared/dto"
	apierrors "github.com/feral-file/ff-agent-registry/internal/api/shared/errors"
	"github.com/feral-file/ff-agent-registry/internal/registry"
	"github.com/feral-file/ff-agent-registry/internal/store"
)

// Executor is the interface for the API executor
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// QueryEntries returns a page of live registry entries matching the request
	QueryEntries(ctx context.Context, req *dto.QueryEntriesRequest) (*dto.QueryEntriesResponse, error)

	// CheckHealth verifies the API can reach its database
	CheckHealth(ctx context.Context) error
}

type executor struct {
	store   store.Store
	querier registry.Querier
}

func NewExecutor(store store.Store, querier registry.Querier) Executor {
	return &executor{store: store, querier: querier}
}

func (e *executor) QueryEntries(ctx context.Context, req *dto.QueryEntriesRequest) (*dto.QueryEntriesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := e.querier.Query(ctx, req.ToQueryInput())
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to query registry entries: %v", err))
	}

	resp := &dto.QueryEntriesResponse{
		Entries: make([]dto.RegistryEntryResponse, 0, len(result.Entries)),
	}
	for _, entry := range result.Entries {
		resp.Entries = append(resp.Entries, *dto.MapEntryToDTO(entry))
	}
	if result.NextCursor != nil {
		cursor := dto.FormatCursor(*result.NextCursor)
		resp.NextCursor = &cursor
	}

	return resp, nil
}

func (e *executor) CheckHealth(ctx context.Context) error {
	if err := e.store.Ping(ctx); err != nil {
		return apierrors.NewDatabaseError("Database is unreachable", err.Error())
	}
	return nil
}
