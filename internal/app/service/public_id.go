package service

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/medikart/medikart-backend/internal/app/repository"
	"github.com/medikart/medikart-backend/pkg/logger"
)

// PublicIDAllocator hands out prefixed sequential store ids (MED00001,
// MED00002, ...). Primary path is the sequences table; when that fails it
// falls back to scanning every assigned id for the highest numeric suffix.
// The fallback is advisory under concurrency; the draft creator's
// insert-or-fetch on the unique public_id column is the real safety net.
type PublicIDAllocator struct {
	sequenceRepo repository.SequenceRepository
	storeRepo    repository.StoreRepository
	progressRepo repository.ProgressRepository
	prefix       string
}

func NewPublicIDAllocator(
	sequenceRepo repository.SequenceRepository,
	storeRepo repository.StoreRepository,
	progressRepo repository.ProgressRepository,
	prefix string,
) *PublicIDAllocator {
	return &PublicIDAllocator{
		sequenceRepo: sequenceRepo,
		storeRepo:    storeRepo,
		progressRepo: progressRepo,
		prefix:       prefix,
	}
}

func (a *PublicIDAllocator) Allocate() (string, error) {
	n, err := a.sequenceRepo.NextValue(model.SequenceStorePublicID)
	if err == nil {
		return a.format(n), nil
	}

	logger.Warn("Sequence unavailable, falling back to public id scan", map[string]interface{}{
		"error": err.Error(),
	})

	max, err := a.maxAssignedSuffix()
	if err != nil {
		return "", err
	}
	return a.format(max + 1), nil
}

// maxAssignedSuffix covers both ids already in the catalog and ids reserved
// inside in-flight registration documents whose draft row may not exist yet.
func (a *PublicIDAllocator) maxAssignedSuffix() (int64, error) {
	max, err := a.storeRepo.MaxPublicIDSuffix(a.prefix)
	if err != nil {
		return 0, err
	}

	rows, err := a.progressRepo.FindAllInProgress()
	if err != nil {
		return 0, err
	}

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(a.prefix) + `(\d+)$`)
	for _, row := range rows {
		m := pattern.FindStringSubmatch(row.StorePublicID())
		if m == nil {
			continue
		}
		n, parseErr := strconv.ParseInt(m[1], 10, 64)
		if parseErr != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

func (a *PublicIDAllocator) format(n int64) string {
	return fmt.Sprintf("%s%05d", a.prefix, n)
}
