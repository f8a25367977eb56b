package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"labworks/internal/blob"
)

// ReportContentType is the media type of rendered bench reports.
const ReportContentType = "text/markdown; charset=utf-8"

// RenderReport writes a markdown summary of snap, one section per bucket with
// records ordered by id.
func RenderReport(w io.Writer, snap Snapshot, generated time.Time) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Bench report\n\nGenerated %s, %d records.\n", generated.UTC().Format(time.RFC3339), snap.Count())
	section(&buf, "Keyboards", snap.Keyboards)
	section(&buf, "Samples", snap.Samples)
	section(&buf, "Coffees", snap.Coffees)
	section(&buf, "Plants", snap.Plants)
	section(&buf, "Araucarias", snap.Araucarias)
	section(&buf, "Fittonias", snap.Fittonias)
	fmt.Fprintf(&buf, "\n## Library\n\n%s\n", snap.Library)
	if snap.Library.Len() > 0 {
		fmt.Fprintf(&buf, "\nNext book id: %d\n", snap.Library.NextBookID())
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func section[T fmt.Stringer](buf *bytes.Buffer, title string, records map[string]T) {
	fmt.Fprintf(buf, "\n## %s\n\n", title)
	if len(records) == 0 {
		buf.WriteString("_none_\n")
		return
	}
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fmt.Fprintf(buf, "- `%s` %s\n", id, records[id])
	}
}

// ReportKey names a report archived at t.
func ReportKey(t time.Time) string {
	return "reports/bench-" + t.UTC().Format("20060102T150405Z") + ".md"
}

// ArchiveReport renders the current bench into store under key, or under
// ReportKey(now) when key is empty. Existing keys are not replaced.
func (s *Service) ArchiveReport(ctx context.Context, store blob.Store, key string) (blob.Info, error) {
	var info blob.Info
	err := s.observe(ctx, "archive_report", func(ctx context.Context) (auditRef, error) {
		snap, err := s.Snapshot(ctx)
		if err != nil {
			return auditRef{}, err
		}
		now := s.now()
		if key == "" {
			key = ReportKey(now)
		}
		var buf bytes.Buffer
		if err := RenderReport(&buf, snap, now); err != nil {
			return auditRef{id: key}, fmt.Errorf("render report: %w", err)
		}
		info, err = store.Put(ctx, key, &buf, blob.PutOptions{
			ContentType: ReportContentType,
			Metadata: map[string]string{
				"records":   strconv.Itoa(snap.Count()),
				"generated": now.Format(time.RFC3339),
			},
		})
		if err != nil {
			return auditRef{id: key}, fmt.Errorf("archive report %s: %w", key, err)
		}
		return auditRef{id: key}, nil
	})
	return info, err
}
