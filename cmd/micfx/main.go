package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/cbegin/micfx-go"
	"github.com/cbegin/micfx-go/internal/config"
	"github.com/cbegin/micfx-go/internal/rack"
)

var (
	configPath string
	clock      clockwork.Clock = clockwork.NewRealClock()

	enableKinds  []string
	disableKinds []string

	runDuration time.Duration

	toneHz     float64
	toneAmp    float64
	toneLength float64
	outPath    string
)

func loadSettings() config.Settings {
	settings, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("can't load settings: %v", err)
	}
	return settings
}

func newRack(settings config.Settings, opts ...micfx.Option) (*micfx.Rack, error) {
	opts = append([]micfx.Option{micfx.WithClock(clock)}, opts...)
	r, err := micfx.New(settings, opts...)
	if err != nil {
		return nil, fmt.Errorf("starting rack: %w", err)
	}
	if err := applyStates(r, enableKinds, disableKinds); err != nil {
		return nil, err
	}
	return r, nil
}

func listEffects(cmd *cobra.Command, args []string) error {
	r, err := newRack(loadSettings())
	if err != nil {
		return err
	}
	slots, err := r.Slots()
	if err != nil {
		return err
	}
	labels := make(map[rack.Kind]string)
	for _, c := range r.Controls() {
		labels[c.Kind] = c.Label
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLOT\tKIND\tLABEL\tENABLED")
	for _, s := range slots {
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\n", s.Index, s.Kind, labels[s.Kind], s.Enabled)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	settings := loadSettings()
	r, err := newRack(settings, micfx.WithAutoSave(settings.RecordingsDir, func(path string, err error) {
		if err != nil {
			log.Printf("recording not saved: %v", err)
			return
		}
		log.Printf("saved recording %s", path)
	}))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if runDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runDuration)
		defer cancel()
	}

	if err := r.Start(); err != nil {
		return err
	}
	log.Printf("streaming microphone at %d Hz; interrupt to stop", settings.SampleRate)
	<-ctx.Done()

	if err := r.Stop(); err != nil {
		return err
	}
	// Switching Record off flushes the take to disk.
	if on, _ := r.Enabled(rack.Record); on {
		return r.SetEnabled(rack.Record, false)
	}
	return nil
}

func renderTone(cmd *cobra.Command, args []string) error {
	r, err := newRack(loadSettings())
	if err != nil {
		return err
	}
	samples, err := micfx.RenderTone(r, toneHz, toneAmp, toneLength)
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	if err := os.WriteFile(outPath, micfx.EncodeWAVFloat32LE(samples, r.SampleRate(), 2), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Printf("wrote %d frames to %s\n", len(samples)/2, outPath)
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Short: "Microphone effects rack",
		Use:   "micfx",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default $HOME/.micfx.yaml)")
	rootCmd.PersistentFlags().StringSliceVar(&enableKinds, "enable", nil, "effects to switch on (e.g. reverb,pitch-high)")
	rootCmd.PersistentFlags().StringSliceVar(&disableKinds, "disable", nil, "effects to switch off (e.g. delay)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List effect slots and their state",
		RunE:  listEffects,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Stream the microphone through the rack until interrupted",
		RunE:  runLive,
	}
	runCmd.Flags().DurationVar(&runDuration, "duration", 0, "stop after this long (0 runs until interrupted)")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a test tone through the rack into a WAV file",
		RunE:  renderTone,
	}
	renderCmd.Flags().Float64Var(&toneHz, "freq", 440, "tone frequency in Hz")
	renderCmd.Flags().Float64Var(&toneAmp, "amplitude", 0.5, "tone amplitude (0..1)")
	renderCmd.Flags().Float64Var(&toneLength, "seconds", 6, "length of the render")
	renderCmd.Flags().StringVar(&outPath, "out", "micfx-render.wav", "output WAV path")

	rootCmd.AddCommand(listCmd, runCmd, renderCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
