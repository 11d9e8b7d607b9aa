// Package roster loads candidate person names from spreadsheet files in
// a documents directory. It is a one-shot batch import at startup: a
// missing directory or unreadable workbook yields an empty list, never an
// error that blocks the server.
package roster

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/xuri/excelize/v2"
)

// spreadsheetGlob matches the workbook formats excelize can open.
const spreadsheetGlob = "*.{xlsx,xlsm,xltx,xltm}"

// preferredFile is consulted first so its names lead the merged index.
const preferredFile = "peoples.xlsx"

// headerKeywords identify the name column in the first row.
var headerKeywords = []string{"姓名", "人物", "人名", "name"}

type Loader struct {
	log *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{log: logger}
}

// Load reads names from every spreadsheet in dir, preferred file first,
// deduplicated case-insensitively in first-occurrence order.
func (l *Loader) Load(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		l.log.Info("roster directory unavailable", "dir", dir, "err", err)
		return nil
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match, err := doublestar.Match(spreadsheetGlob, strings.ToLower(e.Name()))
		if err != nil || !match {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, e.Name()))
	}
	sort.Slice(candidates, func(i, j int) bool {
		if filepath.Base(candidates[i]) == preferredFile {
			return true
		}
		if filepath.Base(candidates[j]) == preferredFile {
			return false
		}
		return candidates[i] < candidates[j]
	})

	var names []string
	seen := make(map[string]struct{})
	for _, path := range candidates {
		fromFile, err := readNames(path)
		if err != nil {
			l.log.Warn("skipping unreadable roster file", "path", path, "err", err)
			continue
		}
		added := 0
		for _, n := range fromFile {
			key := strings.ToLower(n)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, n)
			added++
		}
		l.log.Info("roster file loaded", "path", path, "names", added)
	}
	return names
}

func readNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := nameColumn(rows[0])
	var names []string
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		if name := strings.TrimSpace(row[col]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// nameColumn finds the column whose header mentions a name keyword,
// defaulting to the first column.
func nameColumn(header []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, kw := range headerKeywords {
			if strings.Contains(h, kw) {
				return i
			}
		}
	}
	return 0
}
