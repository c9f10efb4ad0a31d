package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lp-farming/farming-core/internal/config"
	"github.com/lp-farming/farming-core/internal/emission"
	"github.com/lp-farming/farming-core/internal/utils"
)

// ScheduleCmd prints the configured emission curve.
// Usage: ./farming-core schedule --config config.yml
func ScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the configured emission schedule",
		Args:  cobra.ExactArgs(0),
		RunE:  printSchedule,
	}

	return cmd
}

func printSchedule(cmd *cobra.Command, _ []string) error {
	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}
	schedule, err := cfg.Emission.Schedule()
	if err != nil {
		return err
	}

	return writeSchedule(cmd.OutOrStdout(), cfg.Farm.StartTime, schedule)
}

func writeSchedule(out io.Writer, startTime uint64, schedule *emission.Schedule) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEGMENT\tSTART\tRATE/S\tEMITTED BEFORE")

	for i, bp := range schedule.Breakpoints() {
		emitted := schedule.Integrate(0, bp.Offset)
		fmt.Fprintf(w, "%d\t%d\t%s\t%.4f\n", i, startTime+bp.Offset, bp.Rate, utils.ToWholeTokens(emitted))
	}

	return w.Flush()
}
