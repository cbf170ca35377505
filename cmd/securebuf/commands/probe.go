package commands

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/carved4/go-securebuf/internal/memlock"
	"github.com/carved4/go-securebuf/internal/securebuf"
	"github.com/carved4/go-securebuf/internal/ui"
)

func NewProbeCommand(app *App) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check whether this process can lock memory",
		Long: `Reports the locked memory limit and privileges of this process, then
locks and destroys a buffer of --size bytes with the configured locker and
allocator and prints the resulting lock counters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(app, ui.NewPrinter(cmd.OutOrStdout()), size)
		},
	}

	cmd.Flags().IntVar(&size, "size", 4096, "Bytes to lock")

	return cmd
}

func runProbe(app *App, p *ui.Printer, size int) error {
	if size < 0 {
		return fmt.Errorf("--size must not be negative, got %d", size)
	}

	p.Title("memory lock probe")

	limit, err := memlock.Limit()
	switch {
	case errors.Is(err, memlock.ErrUnsupported):
		p.Field("memlock limit", "not reported")
	case err != nil:
		return err
	case limit.Unlimited():
		p.Field("memlock limit", "unlimited")
	default:
		p.Field("memlock limit", ui.Bytes(limit.Current))
		p.Field("memlock max", ui.Bytes(limit.Max))
		if !limit.Allows(0, uint64(size)) {
			p.Warning(fmt.Sprintf("%s is above the soft limit", ui.Bytes(uint64(size))))
		}
	}

	if elevated, err := memlock.IsElevated(); err != nil {
		p.Warning(fmt.Sprintf("could not check privileges: %v", err))
	} else {
		p.Field("elevated", elevated)
	}

	p.Field("locker", app.Config.Locker)
	p.Field("allocator", app.Config.Allocator)
	p.Divider()

	reg := prometheus.NewRegistry()
	opts, _, err := app.Config.Options(app.Logger, reg)
	if err != nil {
		return err
	}

	buf, err := securebuf.New(size, opts...)
	if err != nil {
		p.Error(fmt.Sprintf("could not lock %s", ui.Bytes(uint64(size))))
		if errors.Is(err, securebuf.ErrLockFailure) {
			p.Muted("  raise the limit with 'ulimit -l' or set 'locker: none' in the config")
		}
		return err
	}
	p.Success(fmt.Sprintf("locked %s", ui.Bytes(uint64(size))))

	held, err := gatherLockStats(reg)
	if err != nil {
		buf.Destroy()
		return err
	}
	buf.Destroy()

	after, err := gatherLockStats(reg)
	if err != nil {
		return err
	}

	p.Field("locked while held", ui.Bytes(uint64(held.LockedBytes)))
	p.Field("locked after", ui.Bytes(uint64(after.LockedBytes)))
	p.Field("lock ok", after.Operations["lock ok"])
	p.Field("unlock ok", after.Operations["unlock ok"])
	p.Field("errors", after.Operations["lock error"]+after.Operations["unlock error"])
	return nil
}

type lockStats struct {
	LockedBytes float64
	// Operations is keyed by "<op> <result>", e.g. "lock ok".
	Operations map[string]float64
}

func gatherLockStats(g prometheus.Gatherer) (lockStats, error) {
	stats := lockStats{Operations: map[string]float64{}}

	families, err := g.Gather()
	if err != nil {
		return stats, fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, f := range families {
		switch f.GetName() {
		case "securebuf_locked_bytes":
			for _, m := range f.GetMetric() {
				stats.LockedBytes = m.GetGauge().GetValue()
			}
		case "securebuf_lock_operations_total":
			for _, m := range f.GetMetric() {
				var op, result string
				for _, l := range m.GetLabel() {
					switch l.GetName() {
					case "op":
						op = l.GetValue()
					case "result":
						result = l.GetValue()
					}
				}
				stats.Operations[op+" "+result] = m.GetCounter().GetValue()
			}
		}
	}
	return stats, nil
}
