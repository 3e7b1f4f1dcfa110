package block

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"artfolio/internal/common"
	"artfolio/internal/dbmysql"
)

type MockBlockRepository struct {
	mock.Mock
}

func (m *MockBlockRepository) ByID(ctx context.Context, portfolioID, blockID uint64) (*dbmysql.ContentBlock, error) {
	args := m.Called(ctx, portfolioID, blockID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dbmysql.ContentBlock), args.Error(1)
}

func (m *MockBlockRepository) ByPortfolio(ctx context.Context, portfolioID uint64) ([]*dbmysql.ContentBlock, error) {
	args := m.Called(ctx, portfolioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dbmysql.ContentBlock), args.Error(1)
}

func (m *MockBlockRepository) CountByPortfolio(ctx context.Context, portfolioID uint64) (int64, error) {
	args := m.Called(ctx, portfolioID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlockRepository) Append(ctx context.Context, b *dbmysql.ContentBlock) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBlockRepository) UpdatePayload(ctx context.Context, portfolioID, blockID uint64, payload datatypes.JSON) error {
	args := m.Called(ctx, portfolioID, blockID, payload)
	return args.Error(0)
}

func (m *MockBlockRepository) Reorder(ctx context.Context, portfolioID uint64, positions map[uint64]int) error {
	args := m.Called(ctx, portfolioID, positions)
	return args.Error(0)
}

func (m *MockBlockRepository) Remove(ctx context.Context, portfolioID, blockID uint64) error {
	args := m.Called(ctx, portfolioID, blockID)
	return args.Error(0)
}

type MockEditGate struct {
	mock.Mock
}

func (m *MockEditGate) CheckEditable(ctx context.Context, actor common.Actor, portfolioID uint64) error {
	args := m.Called(ctx, actor, portfolioID)
	return args.Error(0)
}

func testBlocks(ids ...uint64) []*dbmysql.ContentBlock {
	blocks := make([]*dbmysql.ContentBlock, len(ids))
	for i, id := range ids {
		blocks[i] = &dbmysql.ContentBlock{
			BlockID:     id,
			PortfolioID: 7,
			Kind:        KindText.String(),
			SortOrder:   i,
			Payload:     datatypes.JSON(`{"content":"x"}`),
		}
	}
	return blocks
}

func TestBlockService_Add_Success(t *testing.T) {
	repo := new(MockBlockRepository)
	gate := new(MockEditGate)
	service := NewBlockService(repo, gate)
	actor := common.Actor{UserID: 1}

	gate.On("CheckEditable", mock.Anything, actor, uint64(7)).Return(nil)
	repo.On("Append", mock.Anything, mock.MatchedBy(func(b *dbmysql.ContentBlock) bool {
		return b.PortfolioID == 7 && b.Kind == "text"
	})).Return(nil)
	repo.On("ByPortfolio", mock.Anything, uint64(7)).Return(testBlocks(10), nil)

	blocks, err := service.Add(context.Background(), actor, 7, "text", map[string]interface{}{"content": "hello"})
	require.NoError(t, err)
	assert.Len(t, blocks, 1)
	repo.AssertExpectations(t)
	gate.AssertExpectations(t)
}

func TestBlockService_Add_InvalidKindRejectedBeforeGate(t *testing.T) {
	repo := new(MockBlockRepository)
	gate := new(MockEditGate)
	service := NewBlockService(repo, gate)

	_, err := service.Add(context.Background(), common.Actor{UserID: 1}, 7, "carousel", map[string]interface{}{})
	require.Error(t, err)
	var validation *common.ValidationError
	assert.ErrorAs(t, err, &validation)
	gate.AssertNotCalled(t, "CheckEditable", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestBlockService_Add_InvalidPayloadRejected(t *testing.T) {
	repo := new(MockBlockRepository)
	gate := new(MockEditGate)
	service := NewBlockService(repo, gate)

	_, err := service.Add(context.Background(), common.Actor{UserID: 1}, 7, "image", map[string]interface{}{"caption": "no url"})
	require.Error(t, err)
	var validation *common.ValidationError
	assert.ErrorAs(t, err, &validation)
	repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestBlockService_Add_GateDenies(t *testing.T) {
	repo := new(MockBlockRepository)
	gate := new(MockEditGate)
	service := NewBlockService(repo, gate)
	actor := common.Actor{UserID: 2}

	gate.On("CheckEditable", mock.Anything, actor, uint64(7)).
		Return(common.NewForbidden("portfolio is locked for review"))

	_, err := service.Add(context.Background(), actor, 7, "text", map[string]interface{}{"content": "hi"})
	require.Error(t, err)
	var forbidden *common.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
	repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestBlockService_Update_MergesPartialPayload(t *testing.T) {
	repo := new(MockBlockRepository)
	gate := new(MockEditGate)
	service := NewBlockService(repo, gate)
	actor := common.Actor{UserID: 1}

	existing := &dbmysql.ContentBlock{
		BlockID:     10,
		PortfolioID: 7,
		Kind:        KindImage.String(),
		Payload:     datatypes.JSON(`{"url":"http://cdn/a.png","caption":"old"}`),
	}

	gate.On("CheckEditable", mock.Anything, actor, uint64(7)).Return(nil)
	repo.On("ByID", mock.Anything, uint64(7), uint64(10)).Return(existing, nil)
	repo.On("UpdatePayload", mock.Anything, uint64(7), uint64(10), mock.MatchedBy(func(p datatypes.JSON) bool {
		return len(p) > 0
	})).Return(nil)
	repo.On("ByPortfolio", mock.Anything, uint64(7)).Return(testBlocks(10), nil)

	_, err := service.Update(context.Background(), actor, 7, 10, map[string]interface{}{"caption": "new"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestBlockService_Update_UnknownBlock(t *testing.T) {
	repo := new(MockBlockRepository)
	gate := new(MockEditGate)
	service := NewBlockService(repo, gate)
	actor := common.Actor{UserID: 1}

	gate.On("CheckEditable", mock.Anything, actor, uint64(7)).Return(nil)
	repo.On("ByID", mock.Anything, uint64(7), uint64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.Update(context.Background(), actor, 7, 99, map[string]interface{}{"content": "x"})
	require.Error(t, err)
	var notFound *common.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestBlockService_Update_EmptyPartial(t *testing.T) {
	service := NewBlockService(new(MockBlockRepository), new(MockEditGate))

	_, err := service.Update(context.Background(), common.Actor{UserID: 1}, 7, 10, map[string]interface{}{})
	require.Error(t, err)
	var validation *common.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestBlockService_Reorder_Success(t *testing.T) {
	repo := new(MockBlockRepository)
	gate := new(MockEditGate)
	service := NewBlockService(repo, gate)
	actor := common.Actor{UserID: 1}

	gate.On("CheckEditable", mock.Anything, actor, uint64(7)).Return(nil)
	repo.On("ByPortfolio", mock.Anything, uint64(7)).Return(testBlocks(10, 11, 12), nil)
	repo.On("Reorder", mock.Anything, uint64(7), map[uint64]int{12: 0, 10: 1, 11: 2}).Return(nil)

	_, err := service.Reorder(context.Background(), actor, 7, []uint64{12, 10, 11})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestBlockService_Reorder_StalePermutations(t *testing.T) {
	cases := []struct {
		name string
		ids  []uint64
	}{
		{"missing a block", []uint64{10, 11}},
		{"extra block", []uint64{10, 11, 12, 13}},
		{"foreign block", []uint64{10, 11, 99}},
		{"duplicate id", []uint64{10, 11, 11}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockBlockRepository)
			gate := new(MockEditGate)
			service := NewBlockService(repo, gate)
			actor := common.Actor{UserID: 1}

			gate.On("CheckEditable", mock.Anything, actor, uint64(7)).Return(nil)
			repo.On("ByPortfolio", mock.Anything, uint64(7)).Return(testBlocks(10, 11, 12), nil)

			_, err := service.Reorder(context.Background(), actor, 7, tc.ids)
			require.Error(t, err)
			var conflict *common.ConflictError
			assert.ErrorAs(t, err, &conflict)
			repo.AssertNotCalled(t, "Reorder", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestBlockService_Remove_UnknownBlock(t *testing.T) {
	repo := new(MockBlockRepository)
	gate := new(MockEditGate)
	service := NewBlockService(repo, gate)
	actor := common.Actor{UserID: 1}

	gate.On("CheckEditable", mock.Anything, actor, uint64(7)).Return(nil)
	repo.On("Remove", mock.Anything, uint64(7), uint64(99)).Return(gorm.ErrRecordNotFound)

	_, err := service.Remove(context.Background(), actor, 7, 99)
	require.Error(t, err)
	var notFound *common.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestBlockService_BindImageURL_WrongKind(t *testing.T) {
	repo := new(MockBlockRepository)
	service := NewBlockService(repo, new(MockEditGate))

	repo.On("ByID", mock.Anything, uint64(7), uint64(10)).Return(&dbmysql.ContentBlock{
		BlockID:     10,
		PortfolioID: 7,
		Kind:        KindText.String(),
		Payload:     datatypes.JSON(`{"content":"x"}`),
	}, nil)

	err := service.BindImageURL(context.Background(), 7, 10, "http://cdn/a.png")
	require.Error(t, err)
	var validation *common.ValidationError
	assert.ErrorAs(t, err, &validation)
	repo.AssertNotCalled(t, "UpdatePayload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBlockService_BindImageURL_Success(t *testing.T) {
	repo := new(MockBlockRepository)
	service := NewBlockService(repo, new(MockEditGate))

	repo.On("ByID", mock.Anything, uint64(7), uint64(10)).Return(&dbmysql.ContentBlock{
		BlockID:     10,
		PortfolioID: 7,
		Kind:        KindImage.String(),
		Payload:     datatypes.JSON(`{"url":"pending","caption":"c"}`),
	}, nil)
	repo.On("UpdatePayload", mock.Anything, uint64(7), uint64(10), mock.Anything).Return(nil)

	err := service.BindImageURL(context.Background(), 7, 10, "http://cdn/final.png")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
