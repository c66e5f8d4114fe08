package alpacahack

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ctfwatch/internal/domain"
)

// parseListing extracts challenges from the listing table. A malformed row is
// skipped with a warning; a page without a recognizable table, or a table
// where no row parses at all, fails the whole fetch.
func (s *Source) parseListing(doc *goquery.Document, base *url.URL) ([]domain.Challenge, error) {
	body := doc.Find("table tbody").First()
	if body.Length() == 0 {
		return nil, errors.New("challenge table not found")
	}

	rows := body.Find("tr")
	seen := make(map[string]struct{}, rows.Length())
	challenges := make([]domain.Challenge, 0, rows.Length())

	rows.Each(func(i int, row *goquery.Selection) {
		ch, err := parseRow(row, base)
		if err != nil {
			s.logger.Warn("skipping malformed challenge row", "row", i, "error", err)
			return
		}
		if _, dup := seen[ch.ID]; dup {
			s.logger.Warn("duplicate challenge id in listing", "id", ch.ID)
			return
		}
		seen[ch.ID] = struct{}{}
		challenges = append(challenges, ch)
	})

	if rows.Length() > 0 && len(challenges) == 0 {
		return nil, errors.New("no parseable rows in challenge table")
	}

	return challenges, nil
}

// parseRow reads one table row: challenge link, category, points, solves.
func parseRow(row *goquery.Selection, base *url.URL) (domain.Challenge, error) {
	cells := row.Find("td")
	if cells.Length() < 4 {
		return domain.Challenge{}, fmt.Errorf("expected at least 4 cells, got %d", cells.Length())
	}

	link := cells.Eq(0).Find("a").First()
	name := strings.TrimSpace(link.Text())
	href, ok := link.Attr("href")
	if name == "" || !ok || href == "" {
		return domain.Challenge{}, errors.New("missing challenge link")
	}

	ref, err := url.Parse(href)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("invalid challenge href %q: %w", href, err)
	}
	abs := base.ResolveReference(ref)

	id := path.Base(strings.TrimRight(abs.Path, "/"))
	if id == "" || id == "." || id == "/" {
		return domain.Challenge{}, fmt.Errorf("cannot derive id from href %q", href)
	}

	category := strings.TrimSpace(cells.Eq(1).Text())

	points, err := cellInt(cells.Eq(2).Text())
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("points: %w", err)
	}

	solves, err := cellInt(cells.Eq(3).Text())
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("solves: %w", err)
	}
	if solves < 0 {
		return domain.Challenge{}, fmt.Errorf("negative solve count %d", solves)
	}

	return domain.Challenge{
		ID:         id,
		Name:       name,
		Category:   category,
		Points:     points,
		SolveCount: solves,
		URL:        abs.String(),
	}, nil
}

// cellInt parses the leading integer of a cell, tolerating suffixes like
// "123 pts" or "45 solves".
func cellInt(text string) (int, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, errors.New("empty cell")
	}
	return strconv.Atoi(fields[0])
}
