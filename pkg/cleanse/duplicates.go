package cleanse

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// nullKeyComponent stands in for missing values inside the duplicate
// grouping key, so two records both missing a field compare equal on it.
const nullKeyComponent = "<NULL>"

// DuplicateDetectionPass partitions records into groups sharing parcel,
// property address, price, sale date and legal reference, and flags every
// group member except the one with the lowest unique_id. The pass is
// report-only; it never deletes records.
type DuplicateDetectionPass struct {
	logger *zap.Logger
}

// NewDuplicateDetectionPass creates the duplicate detector
func NewDuplicateDetectionPass() *DuplicateDetectionPass {
	return &DuplicateDetectionPass{logger: zap.L().Named(PassDetectDuplicates)}
}

// Name returns the canonical pass name
func (p *DuplicateDetectionPass) Name() string { return PassDetectDuplicates }

// Apply groups records by the duplicate key and stores the groups with
// more than one member on the dataset
func (p *DuplicateDetectionPass) Apply(ctx context.Context, ds *Dataset) (*PassResult, error) {
	result := NewPassResult(p.Name())
	result.RecordsExamined = len(ds.Records)

	buckets := make(map[string][]int)
	for i := range ds.Records {
		key := duplicateKey(&ds.Records[i])
		buckets[key] = append(buckets[key], ds.Records[i].UniqueID)
	}

	groups := make([]DuplicateGroup, 0)
	for key, ids := range buckets {
		if len(ids) <= 1 {
			continue
		}
		sort.Ints(ids)
		groups = append(groups, DuplicateGroup{Key: key, RecordIDs: ids})
	}
	sort.Slice(groups, func(a, b int) bool {
		return groups[a].RecordIDs[0] < groups[b].RecordIDs[0]
	})

	ds.Duplicates = groups

	flagged := 0
	for _, g := range groups {
		flagged += g.FlaggedCount()
	}

	p.logger.Info("Detected duplicate sale records",
		zap.Int("records", result.RecordsExamined),
		zap.Int("duplicateGroups", len(groups)),
		zap.Int("flaggedRecords", flagged))

	result.Complete(true)
	ds.MarkApplied(p.Name())
	return result, nil
}

// duplicateKey builds the composite grouping key for a record
func duplicateKey(r *model.SaleRecord) string {
	parts := []string{
		r.ParcelID,
		nullableKeyPart(r.PropertyAddress),
		priceKeyPart(r.SalePrice),
		dateKeyPart(r.SaleDate),
		r.LegalReference,
	}
	return strings.Join(parts, "|")
}

func nullableKeyPart(s *string) string {
	if s == nil {
		return nullKeyComponent
	}
	return *s
}

func priceKeyPart(p *float64) string {
	if p == nil {
		return nullKeyComponent
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func dateKeyPart(t *time.Time) string {
	if t == nil {
		return nullKeyComponent
	}
	return t.Format(time.RFC3339)
}
