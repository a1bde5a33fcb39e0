package main

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/erazemk/zbirka/internal/filter"
)

// parsePairs turns key=value arguments into pairs. Only the first "="
// separates; the value is taken literally.
func parsePairs(args []string) ([]filter.Pair, error) {
	var pairs []filter.Pair
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, usageError{fmt.Errorf("expected key=value, got %q", arg)}
		}
		pairs = append(pairs, filter.Pair{Key: key, Value: value})
	}
	return pairs, nil
}

// queryPairs decodes a URL query string such as "a=1&b=2" into pairs,
// sorted by key.
func queryPairs(raw string) ([]filter.Pair, error) {
	q, err := url.ParseQuery(raw)
	if err != nil {
		return nil, usageError{fmt.Errorf("%w: %v", filter.ErrInvalidQuery, err)}
	}
	keys := make([]string, 0, len(q))
	for key := range q {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var pairs []filter.Pair
	for _, key := range keys {
		for _, v := range q[key] {
			pairs = append(pairs, filter.Pair{Key: key, Value: v})
		}
	}
	return pairs, nil
}

// updateFields checks that every pair names an editable field and returns
// them as a form. A later pair for the same key wins.
func updateFields(pairs []filter.Pair) (filter.Fields, error) {
	fields := filter.Fields{}
	for _, p := range pairs {
		f, ok := filter.LookupField(p.Key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", filter.ErrUnknownField, p.Key)
		}
		if !f.Editable {
			return nil, fmt.Errorf("%w: %s", filter.ErrReadOnlyField, p.Key)
		}
		fields[p.Key] = p.Value
	}
	return fields, nil
}

// confirmPrompt asks a y/N question on out and reads the answer from in.
// Anything but y or yes declines, including end of input.
func confirmPrompt(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
