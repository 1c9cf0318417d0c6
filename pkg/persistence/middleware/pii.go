package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
)

// Mask replaces values whose key matches a PII pattern.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks ui-content, report text
// and extra data values whose key matches one of the patterns. Only the
// journaled copy is masked.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PII pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, station string, record *domain.Record) error {
	cloned, err := cloneRecord(record)
	if err != nil {
		return err
	}

	if data := cloned.State.Data; data != nil {
		m.maskStrings(data.UIContent)
		if data.Report != nil {
			m.maskStrings(data.Report.Text)
		}
		m.maskMap(data.Extra)
	}
	return m.next.Save(ctx, station, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, station string) (*domain.Record, error) {
	return m.next.Load(ctx, station)
}

func (m *piiMiddleware) Delete(ctx context.Context, station string) error {
	return m.next.Delete(ctx, station)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) maskStrings(values map[string]string) {
	for k := range values {
		if m.matches(k) {
			values[k] = Mask
		}
	}
}

func (m *piiMiddleware) maskMap(values map[string]any) {
	for k, v := range values {
		if m.matches(k) {
			values[k] = Mask
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			m.maskMap(sub)
		}
	}
}

// cloneRecord deep-copies a record through its JSON form.
func cloneRecord(record *domain.Record) (*domain.Record, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to clone record: %w", err)
	}
	var out domain.Record
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to clone record: %w", err)
	}
	return &out, nil
}
