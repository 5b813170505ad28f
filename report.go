package so

import (
	"fmt"
	"io"
	"os"
)

// writeMetricsReport is called once, when every descriptor in the table has
// died, to produce the end-of-run metrics report at k.config.ReportPath.
// A failure to create the file is logged, not fatal: the machine has
// already finished running by this point. Grounded on printa_metricas;
// the fixed-column text layout is carried verbatim, translated field names
// only (never the Portuguese labels themselves, which would leak the
// original's authorship).
func (k *Kernel) writeMetricsReport() {
	f, err := os.Create(k.config.ReportPath)
	if err != nil {
		k.logger.Error("cannot create metrics report", "path", k.config.ReportPath, "error", err)
		return
	}
	defer f.Close()

	if err := k.formatMetricsReport(f); err != nil {
		k.logger.Error("cannot write metrics report", "path", k.config.ReportPath, "error", err)
	}
}

func (k *Kernel) formatMetricsReport(w io.Writer) error {
	const rule = "=====================================================\n"

	totalPreemptions := 0
	for _, d := range k.table.All() {
		totalPreemptions += d.Metrics.Preemptions
	}

	if _, err := fmt.Fprint(w, rule); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "               KERNEL METRICS\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, rule); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, " Total runtime               : %d\n", k.metrics.TotalRuntime); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, " Total idle time             : %d\n", k.metrics.TotalIdleTime); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, " Total processes             : %d\n", k.table.Len()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, " Total preemptions           : %d\n\n", totalPreemptions); err != nil {
		return err
	}

	for kind := IRQReset; int(kind) < irqKindCount; kind++ {
		if _, err := fmt.Fprintf(w, " Interrupts %-12s      : %d\n", kind, k.metrics.IRQCounts[kind]); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n"+rule); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "               PROCESS METRICS\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, rule); err != nil {
		return err
	}

	for _, d := range k.table.All() {
		if _, err := fmt.Fprint(w, "-----------------------------------------------------\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, " PID                         : %d\n", d.PID); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, " Return time                 : %d\n", d.Metrics.ReturnTime); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, " Mean response time          : %.2f\n", d.Metrics.MeanResponseTime()); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, " Preemptions                 : %d\n\n", d.Metrics.Preemptions); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, " READY:\n   - entries     : %d\n   - time        : %d\n\n", d.Metrics.ReadyCount, d.Metrics.ReadyTime); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, " RUNNING:\n   - entries     : %d\n   - time        : %d\n\n", d.Metrics.RunningCount, d.Metrics.RunningTime); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, " BLOCKED:\n   - entries     : %d\n   - time        : %d\n", d.Metrics.BlockedCount, d.Metrics.BlockedTime); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "-----------------------------------------------------\n"+rule)
	return err
}
