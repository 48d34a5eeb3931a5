package pdf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/langlang056/pdf-for-college/internal/domain"
)

// ParseRange turns an expression like "1-5,7,10-12" into ascending,
// de-duplicated page numbers within [1, totalPages]. An empty expression
// selects every page. Any malformed or out-of-bounds token fails the whole
// parse with a range error.
func ParseRange(expr string, totalPages int) ([]int, error) {
	if strings.TrimSpace(expr) == "" {
		pages := make([]int, 0, totalPages)
		for p := 1; p <= totalPages; p++ {
			pages = append(pages, p)
		}
		return pages, nil
	}

	seen := make(map[int]struct{})
	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, domain.RangeError(fmt.Sprintf("empty token in page range %q", expr), nil)
		}

		start, end, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		if start < 1 || end > totalPages {
			return nil, domain.RangeError(
				fmt.Sprintf("page range %s is outside 1-%d", token, totalPages), nil)
		}
		for p := start; p <= end; p++ {
			seen[p] = struct{}{}
		}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, nil
}

// parseToken parses "<int>" or "<int>-<int>".
func parseToken(token string) (int, int, error) {
	lo, hi, isRange := strings.Cut(token, "-")
	if !isRange {
		n, err := strconv.Atoi(token)
		if err != nil {
			return 0, 0, domain.RangeError(fmt.Sprintf("invalid page number %q", token), err)
		}
		return n, n, nil
	}

	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, domain.RangeError(fmt.Sprintf("invalid range start in %q", token), err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, domain.RangeError(fmt.Sprintf("invalid range end in %q", token), err)
	}
	if start > end {
		return 0, 0, domain.RangeError(fmt.Sprintf("range %q starts after it ends", token), nil)
	}
	return start, end, nil
}
