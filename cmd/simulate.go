// File: cmd/simulate.go
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/edespino/cbcrash/crashhandler"
	"github.com/spf13/cobra"
)

var (
	simSignal    string
	simInProcess bool
	simPanic     bool
	simTimeout   time.Duration
)

// simulateCmd arms the crash handler and crashes on purpose.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Crash on purpose to exercise crash reporting",
	Long: `Arm the crash handler, then crash with the given fault. The process
never exits normally: a reporter is started with --crashinfo=<name>, or the
report is built in-process with --in-process, and the process then aborts.

Faults are raised as signals by default. With --panic the fault happens in
Go code instead (SEGV: nil dereference, FPE: integer division by zero,
ABRT: panic) and is caught by the crash handler's recover path.

  cbcrash simulate --signal SEGV
  cbcrash simulate --signal FPE --panic --in-process`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulate()
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringVar(&simSignal, "signal", "SEGV", "Fault to raise: ILL, ABRT, BUS, FPE or SEGV")
	simulateCmd.Flags().BoolVar(&simInProcess, "in-process", false, "Build the report in the crashing process")
	simulateCmd.Flags().BoolVar(&simPanic, "panic", false, "Fault in Go code instead of raising a signal")
	simulateCmd.Flags().DurationVar(&simTimeout, "reporter-timeout", crashhandler.DefaultConfig().ReporterTimeout, "How long to wait for the reporter process")
}

// newCrashHandler returns a handler whose reporter is this executable with
// the current report flags.
func newCrashHandler(inProcess bool, timeout time.Duration) *crashhandler.Handler {
	rep := newReporter()
	return crashhandler.New(crashhandler.Config{
		Args: []string{
			"--format=" + formatFlag,
			"--output-dir=" + outputDir,
		},
		ReporterTimeout: timeout,
		InProcess:       inProcess,
		Processor: crashhandler.ProcessorFunc(func(rec *crashhandler.Record) error {
			defer rec.Remove()
			return rep.Process(rec)
		}),
	})
}

func runSimulate() error {
	if err := validateFormat(formatFlag); err != nil {
		return err
	}
	kind, err := crashhandler.ParseKind(strings.ToUpper(simSignal))
	if err != nil {
		return err
	}
	fault, err := faultFor(kind, simPanic)
	if err != nil {
		return err
	}

	h := newCrashHandler(simInProcess, simTimeout)
	if err := h.Initialize(); err != nil {
		return fmt.Errorf("simulate: failed to initialize crash handler: %w", err)
	}
	defer h.Shutdown()

	h.AddCallback(func() {
		_, _ = os.Stderr.WriteString("cbcrash: crash detected, writing crash info\n")
	})
	if err := h.RegisterCrashHandlers(); err != nil {
		return fmt.Errorf("simulate: failed to register crash handlers: %w", err)
	}

	mode := "reporter process"
	if !h.OutOfProcess() {
		mode = "in-process"
	}
	fmt.Printf("Raising %s (%s reporting, crash info %q)\n", kind, mode, h.SharedMemoryName())

	fault()

	// Signal delivery is asynchronous; give the handler time to take over.
	time.Sleep(simTimeout + 5*time.Second)
	return fmt.Errorf("simulate: %s was not intercepted", kind)
}

// faultFor returns the function that produces kind.
func faultFor(kind crashhandler.FaultKind, asPanic bool) (func(), error) {
	if !asPanic {
		sig, _ := kind.Signal()
		return func() {
			if p, err := os.FindProcess(os.Getpid()); err == nil {
				_ = p.Signal(sig)
			}
		}, nil
	}

	switch kind {
	case crashhandler.Segv:
		return func() { crashhandler.Guard(nilDereference) }, nil
	case crashhandler.FPException:
		return func() { crashhandler.Guard(divideByZero) }, nil
	case crashhandler.Abort:
		return func() { crashhandler.Guard(func() { panic("cbcrash: simulated abort") }) }, nil
	}
	return nil, fmt.Errorf("simulate: %s cannot be raised from Go code, use a signal", kind)
}

var zero int

//go:noinline
func nilDereference() {
	var p *int
	fmt.Println(*p)
}

//go:noinline
func divideByZero() {
	fmt.Println(1 / zero)
}
