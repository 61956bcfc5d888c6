package repository

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/godilite/cs-dashboard/internal/repository/models"
)

const maxLineSize = 16 << 20

var (
	ErrMalformedRecord = errors.New("malformed ticket record")

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// timestampLayouts are tried in order for string timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"20060102",
}

// LoadFile reads a JSONL ticket file.
func LoadFile(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticket file: %w", err)
	}
	defer f.Close()

	return LoadTickets(f)
}

// LoadTickets parses one ticket per line. Blank lines are skipped; any other
// line that is not a JSON object fails the whole load.
func LoadTickets(r io.Reader) (*models.Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var tickets []*models.Ticket
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		t, err := parseTicket(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		t.Seq = len(tickets)
		tickets = append(tickets, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ticket file: %w", err)
	}

	return models.NewTable(tickets), nil
}

func parseTicket(line []byte) (*models.Ticket, error) {
	var item map[string]any
	if err := json.Unmarshal(line, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: record is null", ErrMalformedRecord)
	}

	tags, err := tagList(item["tags"])
	if err != nil {
		return nil, err
	}

	t := &models.Ticket{
		ID:        textValue(item["id"]),
		Tags:      tags,
		Durations: make(map[models.DurationKind]string, len(models.DurationKinds)),
		Raw:       append([]byte(nil), line...),
	}

	t.ServiceType = ExtractLevel(tags, string(models.FieldServiceType), 1)
	t.ServiceSecondary = ExtractLevel(tags, string(models.FieldServiceType), 2)
	t.CustomerType = ExtractLevel(tags, string(models.FieldCustomerType), 1)
	t.InquiryType = ExtractLevel(tags, string(models.FieldInquiryType), 1)
	t.InquirySecondary = ExtractLevel(tags, string(models.FieldInquiryType), 2)

	if ts, ok := ParseTimestamp(item["firstAskedAt"]); ok {
		t.FirstAskedAt = &ts
		month := ts.Format("2006-01")
		t.Month = &month
	}

	for _, k := range models.DurationKinds {
		if v, ok := item[string(k)]; ok && v != nil {
			t.Durations[k] = textValue(v)
		}
	}

	if sat, ok := item["cs_satisfaction"].(map[string]any); ok {
		t.Satisfaction = sat
	}

	return t, nil
}

func tagList(v any) ([]string, error) {
	raw, ok := v.([]any)
	if !ok {
		return nil, nil
	}
	tags := make([]string, 0, len(raw))
	for i, tv := range raw {
		s, ok := tv.(string)
		if !ok {
			return nil, fmt.Errorf("%w: tag %d is %T, not a string", ErrMalformedRecord, i, tv)
		}
		tags = append(tags, s)
	}
	return tags, nil
}

// ExtractLevel returns path segment `level` of the first tag under typeName
// that is deep enough, or nil. Level 1 is the first sub-category.
func ExtractLevel(tags []string, typeName string, level int) *string {
	prefix := typeName + "/"
	for _, tag := range tags {
		if !strings.HasPrefix(tag, prefix) {
			continue
		}
		parts := strings.Split(tag, "/")
		if len(parts) > level {
			v := parts[level]
			return &v
		}
	}
	return nil
}

// ParseTimestamp interprets a firstAskedAt value. Strings are matched against
// common ISO-like layouts, including compact YYYYMMDD dates; other digit-only
// strings and numbers are Unix epoch milliseconds.
func ParseTimestamp(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(x)).UTC(), true
	}
	return time.Time{}, false
}

func textValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
