package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/repository"
)

// BetTypeService manages the bet type taxonomy.
type BetTypeService struct {
	db       repository.DBTX
	betTypes repository.BetTypeRepository
}

// NewBetTypeService creates a BetTypeService.
func NewBetTypeService(db repository.DBTX, betTypes repository.BetTypeRepository) *BetTypeService {
	return &BetTypeService{db: db, betTypes: betTypes}
}

// CreateBetTypeInput holds the bet type creation request.
type CreateBetTypeInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create adds a bet type. Names are unique.
func (s *BetTypeService) Create(ctx context.Context, input CreateBetTypeInput) (*domain.BetType, error) {
	if err := domain.ValidateRequired("name", input.Name); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	bt, err := s.betTypes.Create(ctx, s.db, strings.TrimSpace(input.Name), strings.TrimSpace(input.Description))
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.ErrConflict("bet type " + strings.TrimSpace(input.Name) + " already exists")
		}
		return nil, domain.ErrInternal("create bet type", err)
	}
	return bt, nil
}

// List returns all bet types.
func (s *BetTypeService) List(ctx context.Context) ([]domain.BetType, error) {
	types, err := s.betTypes.List(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("list bet types", err)
	}
	return types, nil
}

// Get returns a bet type by ID.
func (s *BetTypeService) Get(ctx context.Context, id int) (*domain.BetType, error) {
	bt, err := s.betTypes.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrInternal("find bet type", err)
	}
	if bt == nil {
		return nil, domain.ErrNotFound("bet type", strconv.Itoa(id))
	}
	return bt, nil
}
