package pipeline_test

import (
	"sync"
	"testing"
	"time"

	"github.com/linkhoard/linkhoard/internal/filter"
	"github.com/linkhoard/linkhoard/internal/model"
	"github.com/linkhoard/linkhoard/internal/pipeline"
)

func newProcessor() *pipeline.Processor {
	return pipeline.NewProcessor(filter.DefaultCatalog())
}

func ids(bms []model.Bookmark) []string {
	var out []string
	for _, b := range bms {
		out = append(out, b.ID)
	}
	return out
}

func TestProcess_RuleAnnotation(t *testing.T) {
	bookmarks := []model.Bookmark{
		{ID: "b1", URL: "https://github.com/x", Title: "x", OriginalFolder: "Root", Tags: model.NewTagSet("keep")},
	}
	ruleList := []model.Rule{
		{ID: "r1", Type: model.RuleDomain, Value: "github.com", TargetFolder: "Dev", Tags: "git"},
	}

	res := newProcessor().Process(bookmarks, ruleList, pipeline.Params{})

	got := res.Bookmarks[0]
	if got.NewFolder != "Dev" {
		t.Errorf("newFolder = %q, want Dev", got.NewFolder)
	}
	if got.Status != model.StatusMatched {
		t.Errorf("status = %q, want matched", got.Status)
	}
	if len(got.RuleTags) != 1 || got.RuleTags[0] != "git" {
		t.Errorf("ruleTags = %v, want [git]", got.RuleTags)
	}
	if !got.Tags.Contains("keep") || !got.Tags.Contains("git") {
		t.Errorf("tags = %v, want union of user and rule tags", got.Tags)
	}

	// Input untouched.
	if bookmarks[0].NewFolder != "" || bookmarks[0].Status != "" {
		t.Errorf("input mutated: %+v", bookmarks[0])
	}
}

func TestProcess_SortOrder(t *testing.T) {
	bookmarks := []model.Bookmark{
		{ID: "plain1", URL: "https://p1.example", OriginalFolder: "Root"},
		{ID: "dup2", URL: "https://dup.example", OriginalFolder: "Root"},
		{ID: "matched", URL: "https://github.com/x", OriginalFolder: "Root"},
		{ID: "plain2", URL: "https://p2.example", OriginalFolder: "Root"},
		{ID: "dup1", URL: "https://dup.example", OriginalFolder: "Root"},
	}
	ruleList := []model.Rule{
		{ID: "r1", Type: model.RuleDomain, Value: "github.com", TargetFolder: "Dev"},
	}

	res := newProcessor().Process(bookmarks, ruleList, pipeline.Params{})

	// Primary of the duplicate group first, its duplicate second, then the
	// rule match, then the rest in original relative order.
	want := []string{"dup2", "dup1", "matched", "plain1", "plain2"}
	got := ids(res.Bookmarks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestProcess_StatsCoverWholeSetNotFilteredSubset(t *testing.T) {
	bookmarks := []model.Bookmark{
		{ID: "b1", URL: "https://a.example", Title: "match me", OriginalFolder: "One", Tags: model.NewTagSet("go")},
		{ID: "b2", URL: "https://a.example", Title: "other", OriginalFolder: "Two", NewFolder: "Moved", Tags: model.NewTagSet("go", "web")},
	}

	res := newProcessor().Process(bookmarks, nil, pipeline.Params{
		SearchQuery: "match me",
		SearchMode:  filter.ModeLiteral,
	})

	if len(res.Bookmarks) != 1 {
		t.Fatalf("filtered = %v", ids(res.Bookmarks))
	}

	// Statistics still see both records.
	if res.TagCounts["go"] != 2 || res.TagCounts["web"] != 1 {
		t.Errorf("tagCounts = %v", res.TagCounts)
	}
	if res.FolderCounts["One"] != 1 || res.FolderCounts["Two"] != 1 || res.FolderCounts["Moved"] != 1 {
		t.Errorf("folderCounts = %v", res.FolderCounts)
	}
	if res.DuplicateCount != 1 {
		t.Errorf("duplicateCount = %d, want 1 (occurrences beyond first)", res.DuplicateCount)
	}
}

func TestProcess_TwoDuplicateMetricsDiffer(t *testing.T) {
	// Three same-URL rows: the occurrence metric counts 2 repeats, while the
	// group annotation marks all 3 members.
	bookmarks := []model.Bookmark{
		{ID: "b1", URL: "https://a.example"},
		{ID: "b2", URL: "https://a.example"},
		{ID: "b3", URL: "https://a.example"},
	}

	res := newProcessor().Process(bookmarks, nil, pipeline.Params{})

	if res.DuplicateCount != 2 {
		t.Errorf("occurrence count = %d, want 2", res.DuplicateCount)
	}
	marked := 0
	for _, b := range res.Bookmarks {
		if b.IsDuplicate || b.HasDuplicate {
			marked++
		}
	}
	if marked != 3 {
		t.Errorf("group members marked = %d, want 3", marked)
	}
}

func TestProcess_FolderFilterSeesPersistedFolder(t *testing.T) {
	// The rule would move b1 into Dev, but folder filtering runs before rule
	// evaluation and only sees the persisted effective folder.
	bookmarks := []model.Bookmark{
		{ID: "b1", URL: "https://github.com/x", OriginalFolder: "Inbox"},
	}
	ruleList := []model.Rule{
		{ID: "r1", Type: model.RuleDomain, Value: "github.com", TargetFolder: "Dev"},
	}

	res := newProcessor().Process(bookmarks, ruleList, pipeline.Params{ActiveFolder: "Dev"})
	if len(res.Bookmarks) != 0 {
		t.Errorf("rule-assigned folder leaked into folder filtering: %v", ids(res.Bookmarks))
	}

	res = newProcessor().Process(bookmarks, ruleList, pipeline.Params{ActiveFolder: "Inbox"})
	if len(res.Bookmarks) != 1 {
		t.Errorf("persisted folder not matched: %v", ids(res.Bookmarks))
	}
}

func TestProcess_DuplicateIndexOverFilteredSet(t *testing.T) {
	bookmarks := []model.Bookmark{
		{ID: "b1", URL: "https://a.example", Title: "keep", OriginalFolder: "One"},
		{ID: "b2", URL: "https://a.example", Title: "drop", OriginalFolder: "Two"},
	}

	res := newProcessor().Process(bookmarks, nil, pipeline.Params{
		SearchQuery: "keep",
		SearchMode:  filter.ModeLiteral,
	})

	// The sibling was filtered out, so the survivor is no duplicate.
	if len(res.Bookmarks) != 1 {
		t.Fatalf("filtered = %v", ids(res.Bookmarks))
	}
	if res.Bookmarks[0].HasDuplicate || res.Bookmarks[0].IsDuplicate {
		t.Errorf("duplicate flags computed over unfiltered set: %+v", res.Bookmarks[0])
	}
}

func TestRunner_NewestResultObservedLast(t *testing.T) {
	proc := newProcessor()

	var mu sync.Mutex
	var seen []int

	done := make(chan struct{}, 16)
	runner := pipeline.NewRunner(proc, func(res pipeline.Result) {
		mu.Lock()
		seen = append(seen, len(res.Bookmarks))
		mu.Unlock()
		done <- struct{}{}
	})
	defer runner.Close()

	// Burst of submissions with growing input; intermediate ones may be
	// superseded, but the final observed result must reflect the last one.
	var bms []model.Bookmark
	for i := 0; i < 5; i++ {
		bms = append(bms, model.Bookmark{ID: model.GenerateUUID(), URL: "https://a.example"})
		runner.Submit(pipeline.Request{Bookmarks: append([]model.Bookmark(nil), bms...)})
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-done:
		case <-deadline:
			t.Fatal("timed out waiting for results")
		}
		mu.Lock()
		last := seen[len(seen)-1]
		mu.Unlock()
		if last == 5 {
			return
		}
	}
}
