package ui

import (
	"fmt"

	"github.com/bamsammich/dcp/internal/stats"
)

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  files 48,917  skipped 12  size 2.1 GB  avg 641 MB/s  time 3m 17s  errors 0
func CompletionSummary(snap stats.Snapshot, dryRun bool) string {
	icon := "✓"
	if snap.FilesFailed > 0 {
		icon = "✗"
	}
	label := "done"
	if dryRun {
		label = "dry run"
	}

	base := fmt.Sprintf("%s %s  files %s", label, icon, FormatCount(snap.FilesCopied))
	if snap.FilesOverwritten > 0 {
		base += fmt.Sprintf(" (%s overwritten)", FormatCount(snap.FilesOverwritten))
	}
	base += fmt.Sprintf("  skipped %s", FormatCount(snap.FilesSkipped))
	if snap.FilesDeclined > 0 {
		base += fmt.Sprintf(" (%s declined)", FormatCount(snap.FilesDeclined))
	}

	base += fmt.Sprintf("  size %s", FormatBytes(snap.BytesCopied))
	if !dryRun {
		base += fmt.Sprintf("  avg %s", FormatRate(snap.Throughput()))
	}
	base += fmt.Sprintf("  time %s  errors %d", FormatDuration(snap.Elapsed), snap.FilesFailed)
	return base
}
