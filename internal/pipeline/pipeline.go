// Package pipeline derives the displayed bookmark view from raw bookmark
// state plus rules and filter parameters, and aggregates summary statistics.
package pipeline

import (
	"sort"
	"time"

	"github.com/linkhoard/linkhoard/internal/dedupe"
	"github.com/linkhoard/linkhoard/internal/filter"
	"github.com/linkhoard/linkhoard/internal/model"
	"github.com/linkhoard/linkhoard/internal/rules"
)

// Params are the filter/query inputs of one pipeline pass.
type Params struct {
	SearchQuery  string
	SearchMode   filter.Mode
	ActiveTag    string
	ActiveFolder string
	Smart        filter.Smart
	Date         filter.DateRange
}

// Result is the derived view of one pipeline pass. Bookmarks is the
// filtered, rule-annotated, sorted list; the statistics cover the entire
// input set, not the filtered subset.
type Result struct {
	Bookmarks      []model.Bookmark
	TagCounts      map[string]int
	FolderCounts   map[string]int
	SmartCounts    map[filter.Smart]int
	DuplicateCount int
}

// Processor runs pipeline passes. It holds no mutable bookmark state; every
// pass is a pure function of its inputs.
type Processor struct {
	catalog filter.Catalog
	now     func() time.Time
}

// NewProcessor creates a Processor using the given smart-filter catalog.
func NewProcessor(catalog filter.Catalog) *Processor {
	return &Processor{catalog: catalog, now: time.Now}
}

// Process runs one full pass: search, date, tag, folder and smart filters,
// duplicate annotation over the filtered set, rule evaluation per record,
// then the deterministic sort. Input records are never mutated; the result
// holds copies.
func (p *Processor) Process(bookmarks []model.Bookmark, ruleList []model.Rule, params Params) Result {
	now := p.now()

	candidates := make([]model.Bookmark, len(bookmarks))
	copy(candidates, bookmarks)

	candidates = filter.Search(candidates, params.SearchQuery, params.SearchMode)
	candidates = filter.ByDateRange(candidates, params.Date)
	candidates = filter.ByTag(candidates, params.ActiveTag)
	// Folder filtering sees the last persisted effective folder, not the
	// folder a rule may assign below.
	candidates = filter.ByFolder(candidates, params.ActiveFolder)
	candidates = p.catalog.BySmart(candidates, params.Smart, now)

	dedupe.Annotate(candidates)

	for i := range candidates {
		res := rules.Evaluate(candidates[i], ruleList)
		candidates[i].NewFolder = res.Folder
		candidates[i].RuleTags = res.Tags
		candidates[i].Tags = candidates[i].Tags.Union(res.Tags)
		if res.Matched != nil {
			candidates[i].Status = model.StatusMatched
		} else {
			candidates[i].Status = model.StatusUnchanged
		}
	}

	sortProcessed(candidates)

	return Result{
		Bookmarks:      candidates,
		TagCounts:      tagCounts(bookmarks),
		FolderCounts:   folderCounts(bookmarks),
		SmartCounts:    p.catalog.Counts(bookmarks, now),
		DuplicateCount: dedupe.OccurrenceCount(bookmarks),
	}
}

// sortProcessed orders duplicate-group members first (primaries before
// their duplicates), then rule-matched records, then the rest. The sort is
// stable: within a rank, original relative order is preserved.
func sortProcessed(bookmarks []model.Bookmark) {
	sort.SliceStable(bookmarks, func(i, j int) bool {
		return sortRank(bookmarks[i]) < sortRank(bookmarks[j])
	})
}

func sortRank(b model.Bookmark) int {
	switch {
	case b.HasDuplicate:
		return 0
	case b.IsDuplicate:
		return 1
	case b.Status == model.StatusMatched:
		return 2
	default:
		return 3
	}
}

func tagCounts(bookmarks []model.Bookmark) map[string]int {
	counts := make(map[string]int)
	for _, b := range bookmarks {
		for _, tag := range b.Tags {
			counts[tag]++
		}
	}
	return counts
}

// folderCounts counts each bookmark under its import folder and, if it has
// been moved, additionally under its new folder.
func folderCounts(bookmarks []model.Bookmark) map[string]int {
	counts := make(map[string]int)
	for _, b := range bookmarks {
		if b.OriginalFolder != "" {
			counts[b.OriginalFolder]++
		}
		if b.NewFolder != "" && b.NewFolder != b.OriginalFolder {
			counts[b.NewFolder]++
		}
	}
	return counts
}
