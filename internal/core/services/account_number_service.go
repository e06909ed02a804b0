package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"

	"github.com/staybooked/ledger-core/internal/core/domain"
	portsrepo "github.com/staybooked/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/staybooked/ledger-core/internal/core/ports/services"
	"github.com/staybooked/ledger-core/internal/utils/accounting"
)

const (
	// maxNumberAttempts bounds the sequential candidate probes before the
	// generator falls back to a random suffix.
	maxNumberAttempts = 10

	// sequenceWidth is the zero-padded width of the sequential suffix.
	sequenceWidth = 3

	// randomSuffixWidth is the width of the last-resort random suffix.
	randomSuffixWidth = 4
)

// accountNumberService mints account numbers of the form
// {typeDigit}{scopeDigit}{sequence}. It is collision-averse, not
// collision-proof: the store's unique constraint remains the authoritative
// detector and the account directory retries the whole insert on conflict.
type accountNumberService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	intN        func(n int) int
}

// AccountNumberOption is a functional option for the number generator.
type AccountNumberOption func(*accountNumberService)

// WithRandSource overrides the random source used for the fallback suffix.
func WithRandSource(intN func(n int) int) AccountNumberOption {
	return func(s *accountNumberService) {
		s.intN = intN
	}
}

// NewAccountNumberService creates the account number generator.
func NewAccountNumberService(accountRepo portsrepo.AccountReader, options ...AccountNumberOption) portssvc.AccountNumberGenerator {
	svc := &accountNumberService{
		accountRepo: accountRepo,
		intN:        rand.Intn,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountNumberGenerator = (*accountNumberService)(nil)

// Generate produces a candidate number unique at generation time for the
// given type/scope prefix.
func (s *accountNumberService) Generate(ctx context.Context, accountType domain.AccountType, isUserAccount bool) (string, error) {
	prefix := accounting.TypeDigit(accountType) + accounting.ScopeDigit(isUserAccount)

	highest, err := s.accountRepo.FindHighestAccountNumber(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to find highest account number for prefix %s: %w", prefix, err)
	}

	lastSequence := 0
	if highest != "" {
		seq, parseErr := strconv.Atoi(highest[len(prefix):])
		if parseErr != nil {
			return "", fmt.Errorf("malformed account number %q for prefix %s: %w", highest, prefix, parseErr)
		}
		lastSequence = seq
	}

	// The attempt offset spreads concurrent generators across different
	// candidates, reducing the chance of probing the same number twice.
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		candidate := fmt.Sprintf("%s%0*d", prefix, sequenceWidth, lastSequence+1+attempt)

		exists, err := s.accountRepo.AccountNumberExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check existence of account number %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}

	// Last resort: a random non-sequential suffix.
	fallback := fmt.Sprintf("%s%0*d", prefix, randomSuffixWidth, s.intN(10000))
	s.LogWarn(ctx, "Sequential account number attempts exhausted, using random suffix",
		slog.String("prefix", prefix),
		slog.String("fallback", fallback))
	return fallback, nil
}
