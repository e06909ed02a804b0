package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staybooked/ledger-core/internal/apperrors"
	"github.com/staybooked/ledger-core/internal/core/domain"
	portsrepo "github.com/staybooked/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/staybooked/ledger-core/internal/core/ports/services"
	"github.com/staybooked/ledger-core/internal/dto"
	"github.com/staybooked/ledger-core/internal/utils/accounting"
)

const (
	// maxCreateAttempts bounds whole-insert retries on uniqueness conflicts.
	maxCreateAttempts = 5

	// defaultCreateBackoff is the base of the linearly increasing wait
	// between insert attempts.
	defaultCreateBackoff = 50 * time.Millisecond

	// searchResultCap bounds free-text account search results.
	searchResultCap = 50

	// treeDepth is the eager-load depth of the account tree.
	treeDepth = 3

	// boundAccountLevel is the tree level assigned to user/property accounts.
	boundAccountLevel = 3
)

// ErrAccountAllocation is returned when repeated insert attempts could not
// produce a unique account.
var ErrAccountAllocation = errors.New("could not allocate unique account")

// wellKnownParentNames resolves the parent account a user- or property-bound
// account attaches under. A missing parent degrades to a root account, which
// is valid but unusual.
var (
	userParentNames = map[domain.AccountType]string{
		domain.Asset:     "User Assets",
		domain.Liability: "User Liabilities",
		domain.Equity:    "User Equity",
		domain.Revenue:   "User Revenue",
		domain.Expense:   "User Expenses",
	}
	propertyParentNames = map[domain.AccountType]string{
		domain.Asset:     "Property Assets",
		domain.Liability: "Property Liabilities",
		domain.Equity:    "Property Equity",
		domain.Revenue:   "Property Revenue",
		domain.Expense:   "Property Expenses",
	}
)

// accountService implements the account directory.
type accountService struct {
	BaseService
	accountRepo   portsrepo.AccountRepositoryFacade
	numberGen     portssvc.AccountNumberGenerator
	validate      *validator.Validate
	createBackoff time.Duration
}

// AccountServiceOption is a functional option for the account directory.
type AccountServiceOption func(*accountService)

// WithCreateRetryBackoff overrides the base backoff between insert attempts.
func WithCreateRetryBackoff(d time.Duration) AccountServiceOption {
	return func(s *accountService) {
		s.createBackoff = d
	}
}

// NewAccountService creates the account directory service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, numberGen portssvc.AccountNumberGenerator, options ...AccountServiceOption) portssvc.AccountDirectorySvc {
	svc := &accountService{
		accountRepo:   accountRepo,
		numberGen:     numberGen,
		validate:      validator.New(),
		createBackoff: defaultCreateBackoff,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountDirectorySvc = (*accountService)(nil)

// CreateUserAccount creates a postable account bound to an end-user.
func (s *accountService) CreateUserAccount(ctx context.Context, userID, displayName string, accountType domain.AccountType, currencyCode, creatorUserID string) (*domain.Account, error) {
	return s.createBoundAccount(ctx, boundAccountSpec{
		ownerIsUser: true,
		ownerID:     userID,
		displayName: displayName,
		accountType: accountType,
		currency:    currencyCode,
		parentName:  userParentNames[accountType],
	}, creatorUserID)
}

// CreatePropertyAccount creates a postable account bound to a property.
func (s *accountService) CreatePropertyAccount(ctx context.Context, propertyID, displayName string, accountType domain.AccountType, currencyCode, creatorUserID string) (*domain.Account, error) {
	return s.createBoundAccount(ctx, boundAccountSpec{
		ownerIsUser: false,
		ownerID:     propertyID,
		displayName: displayName,
		accountType: accountType,
		currency:    currencyCode,
		parentName:  propertyParentNames[accountType],
	}, creatorUserID)
}

type boundAccountSpec struct {
	ownerIsUser bool
	ownerID     string
	displayName string
	accountType domain.AccountType
	currency    string
	parentName  string
}

func (s *accountService) createBoundAccount(ctx context.Context, spec boundAccountSpec, creatorUserID string) (*domain.Account, error) {
	if spec.ownerID == "" || spec.displayName == "" {
		return nil, fmt.Errorf("%w: owner ID and display name are required", apperrors.ErrValidation)
	}

	parentID := ""
	parent, err := s.accountRepo.FindAccountByName(ctx, spec.parentName)
	switch {
	case err == nil:
		parentID = parent.AccountID
	case errors.Is(err, apperrors.ErrNotFound):
		s.LogWarn(ctx, "Well-known parent account missing, creating as root",
			slog.String("parent_name", spec.parentName))
	default:
		return nil, fmt.Errorf("failed to resolve parent account %q: %w", spec.parentName, err)
	}

	return s.createWithRetry(ctx, spec.accountType, spec.ownerIsUser, func(accountID, accountNumber string, now time.Time) domain.Account {
		acc := domain.Account{
			AccountID:       accountID,
			AccountNumber:   accountNumber,
			Name:            spec.displayName,
			AccountType:     spec.accountType,
			Category:        domain.CategorySub,
			NormalBalance:   accounting.NormalBalanceFor(spec.accountType),
			CurrencyCode:    spec.currency,
			Balance:         decimal.Zero,
			ParentAccountID: parentID,
			Level:           boundAccountLevel,
			IsActive:        true,
			CanPost:         true,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
		if spec.ownerIsUser {
			acc.UserID = spec.ownerID
		} else {
			acc.PropertyID = spec.ownerID
		}
		return acc
	})
}

// CreateAccount persists an externally-described account after validation.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	level := 1
	if req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, req.ParentAccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve parent account %s: %w", req.ParentAccountID, err)
		}
		level = parent.Level + 1
	}

	isUserScoped := req.UserID != ""
	return s.createWithRetry(ctx, req.AccountType, isUserScoped, func(accountID, accountNumber string, now time.Time) domain.Account {
		return domain.Account{
			AccountID:       accountID,
			AccountNumber:   accountNumber,
			Name:            req.Name,
			AccountType:     req.AccountType,
			Category:        req.Category,
			NormalBalance:   accounting.NormalBalanceFor(req.AccountType),
			CurrencyCode:    req.CurrencyCode,
			Balance:         decimal.Zero,
			ParentAccountID: req.ParentAccountID,
			Level:           level,
			Description:     req.Description,
			IsActive:        true,
			IsSystemAccount: req.IsSystemAccount,
			CanPost:         req.CanPost,
			UserID:          req.UserID,
			PropertyID:      req.PropertyID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
	})
}

// createWithRetry runs the optimistic insert loop. Each attempt discards the
// failed draft and mints a fresh identity and number; the store's unique
// constraint is the authoritative collision detector.
func (s *accountService) createWithRetry(ctx context.Context, accountType domain.AccountType, isUserAccount bool, build func(accountID, accountNumber string, now time.Time) domain.Account) (*domain.Account, error) {
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		number, err := s.numberGen.Generate(ctx, accountType, isUserAccount)
		if err != nil {
			return nil, fmt.Errorf("failed to generate account number: %w", err)
		}

		account := build(uuid.NewString(), number, time.Now().UTC())

		err = s.accountRepo.SaveAccount(ctx, account)
		if err == nil {
			s.LogInfo(ctx, "Account created",
				slog.String("account_id", account.AccountID),
				slog.String("account_number", account.AccountNumber),
				slog.Int("attempt", attempt))
			return &account, nil
		}
		if !errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("failed to save account: %w", err)
		}

		s.LogWarn(ctx, "Account number collision on insert, retrying",
			slog.String("account_number", number),
			slog.Int("attempt", attempt))
		if attempt < maxCreateAttempts {
			time.Sleep(time.Duration(attempt) * s.createBackoff)
		}
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrAccountAllocation, maxCreateAttempts)
}

// GetAccountByID retrieves a single account.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts keyed by ID.
func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return accounts, nil
}

// GetTree returns active root accounts with sub-accounts attached up to
// three levels, ordered by account number. The tree is assembled iteratively
// over an id-indexed arena, one query per level.
func (s *accountService) GetTree(ctx context.Context) ([]domain.AccountNode, error) {
	roots, err := s.accountRepo.ListRootAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list root accounts: %w", err)
	}

	arena := make(map[string]*domain.AccountNode, len(roots))
	nodes := make([]domain.AccountNode, len(roots))
	frontier := make([]string, 0, len(roots))
	for i, acc := range roots {
		nodes[i] = domain.AccountNode{Account: acc}
		frontier = append(frontier, acc.AccountID)
	}
	for i := range nodes {
		arena[nodes[i].AccountID] = &nodes[i]
	}

	for depth := 2; depth <= treeDepth && len(frontier) > 0; depth++ {
		children, err := s.accountRepo.ListSubAccountsByParentIDs(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("failed to list sub-accounts at depth %d: %w", depth, err)
		}

		// Group per parent and allocate each SubAccounts slice exactly once,
		// so arena pointers into it stay valid for the next level.
		byParent := make(map[string][]domain.Account)
		for _, child := range children {
			byParent[child.ParentAccountID] = append(byParent[child.ParentAccountID], child)
		}

		frontier = frontier[:0]
		for parentID, kids := range byParent {
			parent, ok := arena[parentID]
			if !ok {
				continue
			}
			parent.SubAccounts = make([]domain.AccountNode, len(kids))
			for i, kid := range kids {
				parent.SubAccounts[i] = domain.AccountNode{Account: kid}
			}
			for i := range parent.SubAccounts {
				arena[parent.SubAccounts[i].AccountID] = &parent.SubAccounts[i]
				frontier = append(frontier, parent.SubAccounts[i].AccountID)
			}
		}
	}

	return nodes, nil
}

// GetByType lists active accounts of one accounting type.
func (s *accountService) GetByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	return s.accountRepo.ListAccountsByType(ctx, accountType)
}

// GetMainAccounts lists active top-level accounts.
func (s *accountService) GetMainAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accountRepo.ListMainAccounts(ctx)
}

// GetSubAccounts lists the direct children of an account.
func (s *accountService) GetSubAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error) {
	return s.accountRepo.ListSubAccounts(ctx, parentAccountID)
}

// GetPostableAccounts lists active accounts that accept postings.
func (s *accountService) GetPostableAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accountRepo.ListPostableAccounts(ctx)
}

// Search matches a term against number, name and description.
func (s *accountService) Search(ctx context.Context, term string) ([]domain.Account, error) {
	if term == "" {
		return []domain.Account{}, nil
	}
	return s.accountRepo.SearchAccounts(ctx, term, searchResultCap)
}

// GetUserAccount retrieves the account bound to an end-user for a type.
func (s *accountService) GetUserAccount(ctx context.Context, userID string, accountType domain.AccountType) (*domain.Account, error) {
	return s.accountRepo.FindUserAccount(ctx, userID, accountType)
}

// GetPropertyAccount retrieves the account bound to a property for a type.
func (s *accountService) GetPropertyAccount(ctx context.Context, propertyID string, accountType domain.AccountType) (*domain.Account, error) {
	return s.accountRepo.FindPropertyAccount(ctx, propertyID, accountType)
}

// UpdateBalance applies a movement to an account's running balance. The
// movement increases the balance when its direction matches the account's
// normal side and decreases it otherwise. Returns false without error when
// the account does not exist.
func (s *accountService) UpdateBalance(ctx context.Context, accountID string, amount decimal.Decimal, isDebit bool, userID string) (bool, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return false, fmt.Errorf("%w: balance movement must be positive, got %s", apperrors.ErrValidation, amount.String())
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load account %s for balance update: %w", accountID, err)
	}

	delta := accounting.BalanceDelta(account.NormalBalance, amount, isDebit)
	updated, err := s.accountRepo.ApplyBalanceDelta(ctx, accountID, delta, userID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to apply balance delta to account %s: %w", accountID, err)
	}
	return updated, nil
}

// DeactivateAccount soft-deactivates an account.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now().UTC())
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		}
		return err
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}
