package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/linkhoard/linkhoard/internal/classify"
	"github.com/linkhoard/linkhoard/internal/config"
	"github.com/linkhoard/linkhoard/internal/exporter"
	"github.com/linkhoard/linkhoard/internal/filter"
	"github.com/linkhoard/linkhoard/internal/health"
	"github.com/linkhoard/linkhoard/internal/history"
	"github.com/linkhoard/linkhoard/internal/importer"
	"github.com/linkhoard/linkhoard/internal/logger"
	"github.com/linkhoard/linkhoard/internal/model"
	"github.com/linkhoard/linkhoard/internal/ops"
	"github.com/linkhoard/linkhoard/internal/pipeline"
	"github.com/linkhoard/linkhoard/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	switch os.Args[1] {
	case "help", "--help", "-h":
		printHelp()
	case "import":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: linkhoard import <file.html>\n")
			os.Exit(1)
		}
		runImport(os.Args[2])
	case "export":
		var outputPath string
		if len(os.Args) >= 3 {
			outputPath = os.Args[2]
		}
		runExport(outputPath)
	case "process":
		runProcess(os.Args[2:])
	case "search":
		runSearch(os.Args[2:])
	case "check":
		runCheck()
	case "dedupe":
		runDedupe()
	case "clean":
		runClean()
	case "categorize":
		runCategorize(os.Args[2:])
	case "rules":
		runRules(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	help := `linkhoard - bookmark curation toolkit

Usage:
  linkhoard import <file>       Import bookmarks from Netscape HTML
  linkhoard export [path]       Export bookmarks to Netscape HTML
  linkhoard process [flags]     Run the pipeline and print the derived view
  linkhoard search <query>      Fuzzy search (-copy puts the first match on the clipboard)
  linkhoard check               Check all bookmark URLs for dead links
  linkhoard dedupe              Delete duplicate URLs, keeping the earliest
  linkhoard clean               Strip tracking parameters from all URLs
  linkhoard categorize          Suggest folders/tags via AI (-apply to write)
  linkhoard rules list          List classification rules in evaluation order
  linkhoard rules add           Add a rule (-type, -value, -folder, -tags)
  linkhoard rules delete <id>   Delete a rule
  linkhoard help                Show this help

Process flags:
  -query, -mode (literal|fuzzy|regex), -tag, -folder, -smart, -from, -to

Data:
  ~/.config/linkhoard/config.yaml
  ~/.config/linkhoard/linkhoard.db
`
	fmt.Print(help)
}

// app bundles everything a subcommand needs.
type app struct {
	cfg   *config.Config
	log   logger.Logger
	store *storage.SQLiteStore
	ops   *ops.Ops
}

func openApp() *app {
	configPath, err := config.DefaultPath()
	if err != nil {
		fatal("resolve config path: %v", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fatal("load config: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)

	store, err := storage.NewSQLiteStore(cfg.StoragePath)
	if err != nil {
		fatal("open storage: %v", err)
	}

	hist := history.NewLog(cfg.HistoryLimit)
	return &app{
		cfg:   cfg,
		log:   log,
		store: store,
		ops:   ops.New(store, hist, log),
	}
}

func (a *app) close() {
	_ = a.log.Sync()
	if err := a.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing storage: %v\n", err)
	}
}

func (a *app) catalog() filter.Catalog {
	catalog := filter.DefaultCatalog()
	overrides := map[filter.Smart][]string{
		filter.SmartMedia:    a.cfg.Domains.Media,
		filter.SmartSocial:   a.cfg.Domains.Social,
		filter.SmartShopping: a.cfg.Domains.Shopping,
		filter.SmartNews:     a.cfg.Domains.News,
	}
	for category, domains := range overrides {
		if len(domains) > 0 {
			catalog = catalog.WithDomains(category, domains)
		}
	}
	return catalog
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func runImport(filePath string) {
	a := openApp()
	defer a.close()

	file, err := os.Open(filePath)
	if err != nil {
		fatal("open file: %v", err)
	}
	defer file.Close()

	bookmarks, folders, err := importer.ParseHTML(file)
	if err != nil {
		fatal("parse HTML: %v", err)
	}

	// Skip URLs that already exist; re-imports should not create duplicates.
	var added int
	err = a.store.Update(func(tx storage.Tx) error {
		existing, err := tx.Bookmarks()
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(existing))
		for _, b := range existing {
			seen[b.URL] = true
		}

		var fresh []model.Bookmark
		for _, b := range bookmarks {
			if !seen[b.URL] {
				seen[b.URL] = true
				fresh = append(fresh, b)
			}
		}
		added = len(fresh)
		if len(fresh) > 0 {
			if err := tx.PutBookmarks(fresh...); err != nil {
				return err
			}
		}

		known, err := tx.Folders()
		if err != nil {
			return err
		}
		var newFolders []model.Folder
		for _, f := range folders {
			if model.FindFolder(known, f.Name) == nil && model.FindFolder(newFolders, f.Name) == nil {
				f.Order = len(known) + len(newFolders)
				newFolders = append(newFolders, f)
			}
		}
		if len(newFolders) > 0 {
			return tx.PutFolders(newFolders...)
		}
		return nil
	})
	if err != nil {
		fatal("import: %v", err)
	}

	skipped := len(bookmarks) - added
	fmt.Printf("Imported %d bookmarks, %d folders", added, len(folders))
	if skipped > 0 {
		fmt.Printf(" (%d duplicates skipped)", skipped)
	}
	fmt.Println()
}

func runExport(outputPath string) {
	a := openApp()
	defer a.close()

	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			fatal("resolve export path: %v", err)
		}
	}

	bookmarks, err := storage.LoadBookmarks(a.store)
	if err != nil {
		fatal("load bookmarks: %v", err)
	}

	html := exporter.ExportHTML(bookmarks)
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		fatal("write file: %v", err)
	}
	fmt.Printf("Exported %d bookmarks to %s\n", len(bookmarks), outputPath)
}

func runProcess(args []string) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	query := fs.String("query", "", "search query")
	mode := fs.String("mode", "literal", "search mode: literal, fuzzy or regex")
	tag := fs.String("tag", "", "filter by tag")
	folder := fs.String("folder", "", "filter by folder")
	smart := fs.String("smart", "", "smart filter: old, http, untitled, docs, longurl, media, social, shopping, news")
	from := fs.String("from", "", "start date (YYYY-MM-DD)")
	to := fs.String("to", "", "end date (YYYY-MM-DD)")
	_ = fs.Parse(args)

	a := openApp()
	defer a.close()

	var bookmarks []model.Bookmark
	var ruleList []model.Rule
	err := a.store.View(func(tx storage.Tx) error {
		var err error
		if bookmarks, err = tx.Bookmarks(); err != nil {
			return err
		}
		ruleList, err = tx.Rules()
		return err
	})
	if err != nil {
		fatal("load state: %v", err)
	}

	proc := pipeline.NewProcessor(a.catalog())
	result := proc.Process(bookmarks, ruleList, pipeline.Params{
		SearchQuery:  *query,
		SearchMode:   filter.Mode(*mode),
		ActiveTag:    *tag,
		ActiveFolder: *folder,
		Smart:        filter.Smart(*smart),
		Date:         filter.DateRange{Start: *from, End: *to},
	})

	for _, b := range result.Bookmarks {
		marker := " "
		switch {
		case b.HasDuplicate:
			marker = "D"
		case b.IsDuplicate:
			marker = "d"
		case b.Status == model.StatusMatched:
			marker = "*"
		}
		line := fmt.Sprintf("%s %s", marker, b.Title)
		if folder := b.EffectiveFolder(); folder != "" {
			line += fmt.Sprintf("  [%s]", folder)
		}
		if len(b.Tags) > 0 {
			line += fmt.Sprintf("  (%s)", b.Tags.String())
		}
		fmt.Println(line)
		fmt.Printf("    %s\n", b.URL)
	}

	fmt.Printf("\n%d of %d bookmarks, %d duplicate occurrences\n",
		len(result.Bookmarks), len(bookmarks), result.DuplicateCount)
	printCounts("Tags", result.TagCounts)
	printCounts("Folders", result.FolderCounts)

	var smartLines []string
	for _, s := range filter.AllSmart {
		if n := result.SmartCounts[s]; n > 0 {
			smartLines = append(smartLines, fmt.Sprintf("%s=%d", s, n))
		}
	}
	if len(smartLines) > 0 {
		fmt.Printf("Smart: %s\n", strings.Join(smartLines, " "))
	}
}

func printCounts(label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, counts[name])
	}
	fmt.Printf("%s: %s\n", label, strings.Join(parts, " "))
}

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	copyURL := fs.Bool("copy", false, "copy the best match's URL to the clipboard")
	_ = fs.Parse(args)
	query := strings.Join(fs.Args(), " ")
	if query == "" {
		fmt.Fprintf(os.Stderr, "Usage: linkhoard search [-copy] <query>\n")
		os.Exit(1)
	}

	a := openApp()
	defer a.close()

	bookmarks, err := storage.LoadBookmarks(a.store)
	if err != nil {
		fatal("load bookmarks: %v", err)
	}

	matches := filter.Search(bookmarks, query, filter.ModeFuzzy)
	if len(matches) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		return
	}

	for _, b := range matches {
		fmt.Printf("%s\n    %s\n", b.Title, b.URL)
	}

	first := matches[0]
	if *copyURL {
		if err := clipboard.WriteAll(first.URL); err != nil {
			fatal("copy to clipboard: %v", err)
		}
		fmt.Printf("Copied: %s\n", first.URL)
		return
	}
	if len(matches) == 1 {
		fmt.Printf("Opening: %s\n", first.Title)
		openURL(first.URL)
	}
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}

func runCheck() {
	a := openApp()
	defer a.close()

	var bookmarks []model.Bookmark
	var ignored []string
	err := a.store.View(func(tx storage.Tx) error {
		var err error
		if bookmarks, err = tx.Bookmarks(); err != nil {
			return err
		}
		ignored, err = tx.IgnoredURLs()
		return err
	})
	if err != nil {
		fatal("load state: %v", err)
	}

	ignoredSet := make(map[string]bool, len(ignored))
	for _, url := range ignored {
		ignoredSet[url] = true
	}
	var targets []model.Bookmark
	for _, b := range bookmarks {
		if !ignoredSet[b.URL] {
			targets = append(targets, b)
		}
	}
	if len(targets) == 0 {
		fmt.Println("Nothing to check")
		return
	}

	checker := health.NewChecker(a.cfg.Health.Timeout, a.cfg.Health.ExcludeDomains)
	var dead, unreachable int
	results, err := checker.Check(context.Background(), targets, func(batch []health.Result, completed, total int) {
		for _, res := range batch {
			if res.Status == health.Alive {
				continue
			}
			if res.Status == health.Dead {
				dead++
			} else {
				unreachable++
			}
			detail := res.Error
			if detail == "" {
				detail = fmt.Sprintf("HTTP %d", res.StatusCode)
			}
			fmt.Printf("[%s] %s\n    %s (%s)\n", res.Status, res.Bookmark.Title, res.Bookmark.URL, detail)
		}
		fmt.Fprintf(os.Stderr, "Checked %d/%d\r", completed, total)
	})
	if err != nil {
		fatal("check: %v", err)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Printf("%d checked: %d dead, %d unreachable\n", len(results), dead, unreachable)
}

func runDedupe() {
	a := openApp()
	defer a.close()

	n, err := a.ops.DeleteDuplicates()
	if err != nil {
		fatal("dedupe: %v", err)
	}
	fmt.Printf("Deleted %d duplicate bookmarks\n", n)
}

func runClean() {
	a := openApp()
	defer a.close()

	bookmarks, err := storage.LoadBookmarks(a.store)
	if err != nil {
		fatal("load bookmarks: %v", err)
	}
	ids := make([]string, len(bookmarks))
	for i, b := range bookmarks {
		ids[i] = b.ID
	}

	n, err := a.ops.CleanURLs(ids)
	if err != nil {
		fatal("clean: %v", err)
	}
	fmt.Printf("Cleaned %d URLs\n", n)
}

func runCategorize(args []string) {
	fs := flag.NewFlagSet("categorize", flag.ExitOnError)
	apply := fs.Bool("apply", false, "write the suggested changes instead of previewing")
	_ = fs.Parse(args)

	a := openApp()
	defer a.close()

	var bookmarks []model.Bookmark
	var folders []model.Folder
	var tags []model.Tag
	err := a.store.View(func(tx storage.Tx) error {
		var err error
		if bookmarks, err = tx.Bookmarks(); err != nil {
			return err
		}
		if folders, err = tx.Folders(); err != nil {
			return err
		}
		tags, err = tx.Tags()
		return err
	})
	if err != nil {
		fatal("load state: %v", err)
	}
	if len(bookmarks) == 0 {
		fmt.Println("Nothing to categorize")
		return
	}

	client, err := classify.NewClient()
	if err != nil {
		fatal("%v", err)
	}

	storeContext := classify.BuildContext(folders, tags, bookmarks)
	suggested, err := client.Categorize(context.Background(), bookmarks, storeContext)
	if err != nil {
		a.log.Warn("some chunks failed", logger.Error(err))
	}
	if len(suggested) == 0 {
		fatal("no suggestions received")
	}

	suggestions := make(map[string]ops.Suggestion, len(suggested))
	for id, s := range suggested {
		suggestions[id] = ops.Suggestion{Folder: s.Folder, Tags: s.Tags}
	}

	deltas, err := a.ops.PreviewCategorize(suggestions)
	if err != nil {
		fatal("preview: %v", err)
	}
	if len(deltas) == 0 {
		fmt.Println("Everything already categorized")
		return
	}

	for _, d := range deltas {
		fmt.Printf("%s\n", d.Bookmark.Title)
		if d.FolderChanged {
			fmt.Printf("    %s -> %s\n", d.Bookmark.EffectiveFolder(), d.Folder)
		}
		if len(d.AddedTags) > 0 {
			fmt.Printf("    +tags: %s\n", d.AddedTags.String())
		}
	}

	if !*apply {
		fmt.Printf("\n%d changes suggested (rerun with -apply to write them)\n", len(deltas))
		return
	}

	n, err := a.ops.ApplyCategorize(deltas)
	if err != nil {
		fatal("apply: %v", err)
	}
	fmt.Printf("\nCategorized %d bookmarks\n", n)
}

func runRules(args []string) {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		a := openApp()
		defer a.close()

		ruleList, err := storage.LoadRules(a.store)
		if err != nil {
			fatal("load rules: %v", err)
		}
		if len(ruleList) == 0 {
			fmt.Println("No rules defined")
			return
		}
		for i, r := range ruleList {
			effect := r.TargetFolder
			if r.Tags != "" {
				if effect != "" {
					effect += " "
				}
				effect += "+" + r.Tags
			}
			fmt.Printf("%2d. [%s] %s -> %s  (%s)\n", i+1, r.Type, r.Value, effect, r.ID)
		}

	case "add":
		fs := flag.NewFlagSet("rules add", flag.ExitOnError)
		ruleType := fs.String("type", "keyword", "rule type: keyword, domain or exact")
		value := fs.String("value", "", "comma-separated match terms")
		folder := fs.String("folder", "", "target folder")
		tags := fs.String("tags", "", "comma-separated tags to add")
		_ = fs.Parse(args[1:])
		if *value == "" {
			fatal("rules add requires -value")
		}

		rule, err := model.NewRule(model.NewRuleParams{
			Type:         model.RuleType(*ruleType),
			Value:        *value,
			TargetFolder: *folder,
			Tags:         *tags,
		})
		if err != nil {
			fatal("%v", err)
		}

		a := openApp()
		defer a.close()
		err = a.store.Update(func(tx storage.Tx) error {
			return tx.PutRules(rule)
		})
		if err != nil {
			fatal("save rule: %v", err)
		}
		fmt.Printf("Added rule %s\n", rule.ID)

	case "delete":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "Usage: linkhoard rules delete <id>\n")
			os.Exit(1)
		}
		a := openApp()
		defer a.close()
		err := a.store.Update(func(tx storage.Tx) error {
			return tx.DeleteRules(args[1])
		})
		if err != nil {
			fatal("delete rule: %v", err)
		}
		fmt.Println("Deleted")

	default:
		fmt.Fprintf(os.Stderr, "Unknown rules command %q\n", args[0])
		os.Exit(1)
	}
}
