package testutil

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockPositionsRepository is a mock implementation of PositionsRepository.
// Without hooks it pages through Positions by limit/offset.
type MockPositionsRepository struct {
	mu        sync.RWMutex
	positions []entities.Position
	details   map[string]*entities.PositionDetail

	// Function hooks for custom behavior
	FetchPositionsPageFunc  func(ctx context.Context, wallet string, limit, offset int) (*entities.PositionsPage, error)
	FetchPositionDetailFunc func(ctx context.Context, wallet, tokenAddress string) (*entities.PositionDetail, error)

	// Call tracking
	Calls []MockCall
}

func NewMockPositionsRepository() *MockPositionsRepository {
	return &MockPositionsRepository{
		positions: make([]entities.Position, 0),
		details:   make(map[string]*entities.PositionDetail),
		Calls:     make([]MockCall, 0),
	}
}

func (m *MockPositionsRepository) FetchPositionsPage(ctx context.Context, wallet string, limit, offset int) (*entities.PositionsPage, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "FetchPositionsPage", Args: []interface{}{wallet, limit, offset}})
	m.mu.Unlock()

	if m.FetchPositionsPageFunc != nil {
		return m.FetchPositionsPageFunc(ctx, wallet, limit, offset)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	page := &entities.PositionsPage{
		Data:       make([]entities.Position, 0),
		Pagination: entities.PageCursor{Limit: limit, Offset: offset},
		Meta:       entities.PositionsMeta{Network: "base"},
	}
	if offset < len(m.positions) {
		end := offset + limit
		if end > len(m.positions) {
			end = len(m.positions)
		}
		page.Data = append(page.Data, m.positions[offset:end]...)
	}

	return page, nil
}

func (m *MockPositionsRepository) FetchPositionDetail(ctx context.Context, wallet, tokenAddress string) (*entities.PositionDetail, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "FetchPositionDetail", Args: []interface{}{wallet, tokenAddress}})
	m.mu.Unlock()

	if m.FetchPositionDetailFunc != nil {
		return m.FetchPositionDetailFunc(ctx, wallet, tokenAddress)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	detail, ok := m.details[tokenAddress]
	if !ok {
		return nil, &repositories.UpstreamError{Kind: repositories.ErrNotFound, StatusCode: 404}
	}
	copied := *detail
	return &copied, nil
}

// AddPositions appends positions served by the default paging behavior
func (m *MockPositionsRepository) AddPositions(positions ...entities.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions = append(m.positions, positions...)
}

// SetDetail registers the detail payload of a token
func (m *MockPositionsRepository) SetDetail(tokenAddress string, detail *entities.PositionDetail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.details[tokenAddress] = detail
}

// CallCount returns how many times method was called
func (m *MockPositionsRepository) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, c := range m.Calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// MockSnapshotRepository is a mock implementation of SnapshotRepository
type MockSnapshotRepository struct {
	mu        sync.RWMutex
	snapshots []entities.PortfolioSnapshot

	// Function hooks for custom behavior
	InsertFunc       func(ctx context.Context, snapshot *entities.PortfolioSnapshot) error
	ListByWalletFunc func(ctx context.Context, walletAddress string, limit int) ([]entities.PortfolioSnapshot, error)
	LatestFunc       func(ctx context.Context, walletAddress string) (*entities.PortfolioSnapshot, error)

	// Call tracking
	Calls []MockCall
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{
		snapshots: make([]entities.PortfolioSnapshot, 0),
		Calls:     make([]MockCall, 0),
	}
}

func (m *MockSnapshotRepository) Insert(ctx context.Context, snapshot *entities.PortfolioSnapshot) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Insert", Args: []interface{}{snapshot}})
	m.mu.Unlock()

	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, snapshot)
	}

	if snapshot == nil {
		return errors.New("nil snapshot")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, *snapshot)
	return nil
}

func (m *MockSnapshotRepository) ListByWallet(ctx context.Context, walletAddress string, limit int) ([]entities.PortfolioSnapshot, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "ListByWallet", Args: []interface{}{walletAddress, limit}})
	m.mu.Unlock()

	if m.ListByWalletFunc != nil {
		return m.ListByWalletFunc(ctx, walletAddress, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Newest first: snapshots are appended in time order
	result := make([]entities.PortfolioSnapshot, 0)
	for i := len(m.snapshots) - 1; i >= 0 && len(result) < limit; i-- {
		if m.snapshots[i].WalletAddress == walletAddress {
			result = append(result, m.snapshots[i])
		}
	}
	return result, nil
}

func (m *MockSnapshotRepository) Latest(ctx context.Context, walletAddress string) (*entities.PortfolioSnapshot, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Latest", Args: []interface{}{walletAddress}})
	m.mu.Unlock()

	if m.LatestFunc != nil {
		return m.LatestFunc(ctx, walletAddress)
	}

	list, _ := m.ListByWallet(ctx, walletAddress, 1)
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// Snapshots returns a copy of every stored snapshot
func (m *MockSnapshotRepository) Snapshots() []entities.PortfolioSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]entities.PortfolioSnapshot(nil), m.snapshots...)
}

// MockQuoteProvider is a mock implementation of QuoteProvider
type MockQuoteProvider struct {
	mu sync.Mutex

	GetQuoteFunc func(ctx context.Context, req entities.QuoteRequest) (*entities.Quote, error)

	// Requests received, in order
	Requests []entities.QuoteRequest
}

func NewMockQuoteProvider() *MockQuoteProvider {
	return &MockQuoteProvider{}
}

func (m *MockQuoteProvider) GetQuote(ctx context.Context, req entities.QuoteRequest) (*entities.Quote, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.GetQuoteFunc != nil {
		return m.GetQuoteFunc(ctx, req)
	}
	return nil, errors.New("no quote configured")
}

// MockTokenBalanceReader is a mock implementation of TokenBalanceReader
type MockTokenBalanceReader struct {
	TokenBalanceFunc func(ctx context.Context, tokenAddress, ownerAddress string) (*big.Int, error)
}

func (m *MockTokenBalanceReader) TokenBalance(ctx context.Context, tokenAddress, ownerAddress string) (*big.Int, error) {
	if m.TokenBalanceFunc != nil {
		return m.TokenBalanceFunc(ctx, tokenAddress, ownerAddress)
	}
	return big.NewInt(0), nil
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu    sync.Mutex
	Error error
	Calls int
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	m := &MockHealthChecker{}
	if !healthy {
		m.Error = errors.New("health check failed")
	}
	return m
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return m.Error
}

// Interface checks
var (
	_ repositories.PositionsRepository = (*MockPositionsRepository)(nil)
	_ repositories.SnapshotRepository  = (*MockSnapshotRepository)(nil)
	_ repositories.QuoteProvider       = (*MockQuoteProvider)(nil)
	_ repositories.TokenBalanceReader  = (*MockTokenBalanceReader)(nil)
)
