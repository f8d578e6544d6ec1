package structure

import (
	"strings"
	"unicode"
)

// SectionGraceWindow is the distance in characters before the first detected
// section within which content is still attributed to that section. Tunable.
const SectionGraceWindow = 100

// PageRange maps a page number to its character range in the full text
type PageRange struct {
	PageNumber int
	Start      int
	End        int
}

// PageMap is an ordered list of page ranges
type PageMap struct {
	ranges []PageRange
}

// Section marks where a detected heading starts a new section
type Section struct {
	Start   int
	ID      int
	Heading string
	Level   int
}

// SectionMap is an ordered list of detected sections
type SectionMap struct {
	sections []Section
}

// PageText pairs a page number with that page's known text content
type PageText struct {
	PageNumber int
	Text       string
}

// ExtractPageMap locates each page's text within the full document in
// document order. Pages whose text cannot be found are skipped.
func ExtractPageMap(fullText string, pages []PageText) *PageMap {
	pm := &PageMap{}
	searchFrom := 0

	for _, page := range pages {
		probe := strings.TrimSpace(page.Text)
		if probe == "" {
			continue
		}

		idx := strings.Index(fullText[searchFrom:], probe)
		if idx < 0 {
			continue
		}

		start := searchFrom + idx
		end := start + len(probe)
		pm.ranges = append(pm.ranges, PageRange{
			PageNumber: page.PageNumber,
			Start:      start,
			End:        end,
		})
		searchFrom = end
	}

	return pm
}

// PageAt returns the page number for the offset: the containing range, or
// the most recent range that starts at or before the offset, so text in the
// joins between located pages belongs to the preceding page. The second
// return is false when no page information exists at all.
func (pm *PageMap) PageAt(offset int) (int, bool) {
	if len(pm.ranges) == 0 {
		return 0, false
	}

	latest := -1
	for i, r := range pm.ranges {
		if r.Start > offset {
			break
		}
		latest = i
	}

	if latest < 0 {
		// Before the first located page
		return pm.ranges[0].PageNumber, true
	}
	return pm.ranges[latest].PageNumber, true
}

// Len returns the number of located pages
func (pm *PageMap) Len() int {
	return len(pm.ranges)
}

// ExtractSectionMap scans the text line by line for three heading families,
// in priority order: markdown heading markers, numbered outline headings,
// and short all-uppercase lines.
func ExtractSectionMap(fullText string) *SectionMap {
	sm := &SectionMap{}
	offset := 0
	nextID := 1

	for _, line := range strings.SplitAfter(fullText, "\n") {
		content := strings.TrimRight(line, "\n")
		trimmed := strings.TrimSpace(content)

		if heading, level, ok := detectHeading(trimmed); ok {
			sm.sections = append(sm.sections, Section{
				Start:   offset,
				ID:      nextID,
				Heading: heading,
				Level:   level,
			})
			nextID++
		}

		offset += len(line)
	}

	return sm
}

// SectionAt returns the most recently started section at or before the
// offset. Offsets within the grace window before the first section still
// attribute to it.
func (sm *SectionMap) SectionAt(offset int) (Section, bool) {
	if len(sm.sections) == 0 {
		return Section{}, false
	}

	var found *Section
	for i := range sm.sections {
		if sm.sections[i].Start <= offset {
			found = &sm.sections[i]
		} else {
			break
		}
	}

	if found != nil {
		return *found, true
	}

	first := sm.sections[0]
	if first.Start-offset <= SectionGraceWindow {
		return first, true
	}

	return Section{}, false
}

// Len returns the number of detected sections
func (sm *SectionMap) Len() int {
	return len(sm.sections)
}

func detectHeading(line string) (string, int, bool) {
	if line == "" {
		return "", 0, false
	}

	if heading, level, ok := markdownHeading(line); ok {
		return heading, level, true
	}

	if heading, level, ok := numberedHeading(line); ok {
		return heading, level, true
	}

	if heading, ok := uppercaseHeading(line); ok {
		return heading, 1, true
	}

	return "", 0, false
}

func markdownHeading(line string) (string, int, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}

	if level == 0 || level > 6 || level >= len(line) || line[level] != ' ' {
		return "", 0, false
	}

	heading := strings.TrimSpace(line[level:])
	if heading == "" {
		return "", 0, false
	}

	return heading, level, true
}

// numberedHeading matches outline numbering such as "1 Introduction" or
// "2.3.1 Payment Terms". Level is the dot count plus one.
func numberedHeading(line string) (string, int, bool) {
	fields := strings.SplitN(line, " ", 2)
	if len(fields) != 2 {
		return "", 0, false
	}

	marker := strings.TrimSuffix(fields[0], ".")
	if marker == "" {
		return "", 0, false
	}

	dots := 0
	for _, part := range strings.Split(marker, ".") {
		if part == "" {
			return "", 0, false
		}
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return "", 0, false
			}
		}
	}
	dots = strings.Count(marker, ".")

	heading := strings.TrimSpace(fields[1])
	if heading == "" {
		return "", 0, false
	}

	return heading, dots + 1, true
}

// uppercaseHeading treats short all-caps lines (10 to 99 characters) as
// level-1 headings, rendered in title case for display
func uppercaseHeading(line string) (string, bool) {
	if len(line) < 10 || len(line) > 99 {
		return "", false
	}

	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return "", false
			}
		}
	}

	if !hasLetter {
		return "", false
	}

	return titleCase(line), true
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
